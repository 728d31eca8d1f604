package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show a one-shot snapshot of an analysis run",
	Long: `Fetches the current state of an analysis run and prints it.

Without arguments, shows the most recent unfinished run started from
this directory. The output includes per-file progress, the file under
analysis, any pending input request, and the decision history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	cfg, env, cwd, err := setup()
	if err != nil {
		return err
	}

	var runID string
	if len(args) == 1 {
		runID = args[0]
	} else {
		store := newStore(cwd)
		run, err := store.LatestRun()
		if err != nil {
			return fmt.Errorf("failed to load runs: %w", err)
		}
		if run == nil {
			return fmt.Errorf("no unfinished runs found; pass a run ID")
		}
		runID = run.RunID
	}

	gateway := newGateway(cfg, env)
	snap, err := gateway.FlowStatus(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, api.ErrFlowNotFound) {
			return fmt.Errorf("run %s not found on the backend", runID)
		}
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	tui.WriteSnapshot(cmd.OutOrStdout(), runID, snap)
	return nil
}
