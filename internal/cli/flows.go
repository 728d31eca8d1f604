package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/tui"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List analysis runs on the backend",
	RunE:  runFlows,
}

var flowsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete an analysis run from the backend",
	Long: `Deletes a run and its checkpointed state from the backend.

The local run record is removed as well. A deleted run cannot be
resumed.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlowsDelete,
}

func init() {
	flowsCmd.AddCommand(flowsDeleteCmd)
	rootCmd.AddCommand(flowsCmd)
}

func runFlows(cmd *cobra.Command, args []string) error {
	cfg, env, _, err := setup()
	if err != nil {
		return err
	}

	gateway := newGateway(cfg, env)
	flows, err := gateway.ListFlows(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list flows: %w", err)
	}

	tui.WriteFlows(cmd.OutOrStdout(), flows)
	return nil
}

func runFlowsDelete(cmd *cobra.Command, args []string) error {
	runID := args[0]

	cfg, env, cwd, err := setup()
	if err != nil {
		return err
	}

	gateway := newGateway(cfg, env)
	if err := gateway.DeleteFlow(cmd.Context(), runID); err != nil {
		if !errors.Is(err, api.ErrFlowNotFound) {
			return fmt.Errorf("failed to delete flow: %w", err)
		}
	}

	store := newStore(cwd)
	if err := store.DeleteRun(runID); err != nil {
		return fmt.Errorf("failed to remove local run record: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s.\n", runID)
	return nil
}
