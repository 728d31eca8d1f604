package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/codereader/readerctl/internal/flow"
	"github.com/codereader/readerctl/internal/state"
	"github.com/codereader/readerctl/internal/tui"
)

var attachCmd = &cobra.Command{
	Use:   "attach [run-id]",
	Short: "Attach to a running analysis",
	Long: `Attaches to an analysis run and streams progress messages.

Without arguments, attaches to the most recent unfinished run started
from this directory. When the analyzer asks for input, you are prompted
to accept, reject, or refine its work. Ctrl+C detaches without stopping
the run.

Example:
  readerctl attach
  readerctl attach 7f3a2c1e-9b4d-4e8f-a1c2-d3e4f5a6b7c8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAttachCmd,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

func runAttachCmd(cmd *cobra.Command, args []string) error {
	cfg, env, cwd, err := setup()
	if err != nil {
		return err
	}

	store := newStore(cwd)

	var runID string
	if len(args) == 1 {
		runID = args[0]
	} else {
		run, err := store.LatestRun()
		if err != nil {
			return fmt.Errorf("failed to load runs: %w", err)
		}
		if run == nil {
			return fmt.Errorf("no unfinished runs found; pass a run ID or use 'readerctl start'")
		}
		runID = run.RunID
	}

	gateway := newGateway(cfg, env)
	session := flow.NewSession(gateway, flow.WithInterval(cfg.PollInterval()))
	defer session.Close()

	session.Resume(runID)

	out := cmd.OutOrStdout()
	prompter := tui.NewPrompter(cmd.InOrStdin(), out)
	return watchRun(cmd.Context(), session, store, out, prompter)
}

// watchRun consumes session updates until the run finishes, the flow
// disappears, or the user detaches.
func watchRun(ctx context.Context, session *flow.Session, store *state.Store, out io.Writer, prompter *tui.Prompter) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	printed := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nDetached. The run continues on the backend.")
			return nil
		case <-session.Updates():
		}

		printed = tui.WriteMessages(out, session.Messages(), printed)

		if req := session.Pending(); req != nil {
			tui.WriteInteraction(out, req)
			resp, err := prompter.ReadResponse(req)
			if err != nil {
				if errors.Is(err, io.EOF) {
					fmt.Fprintln(out, "\nDetached. The run continues on the backend.")
					return nil
				}
				return err
			}
			if err := session.Respond(ctx, resp); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			printed = tui.WriteMessages(out, session.Messages(), printed)
		}

		switch session.Phase() {
		case flow.PhaseCompleted:
			if runID := session.RunID(); runID != "" {
				// Best effort; the backend remains the source of truth.
				_ = store.UpdateRun(runID, func(r *state.Run) {
					r.Completed = true
				})
			}
			fmt.Fprintln(out, "Analysis complete.")
			return nil
		case flow.PhaseIdle:
			return fmt.Errorf("run is no longer available on the backend")
		}
	}
}
