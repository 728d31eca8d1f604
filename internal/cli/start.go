package cli

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/flow"
	"github.com/codereader/readerctl/internal/githubfs"
	"github.com/codereader/readerctl/internal/state"
	"github.com/codereader/readerctl/internal/tui"
)

var (
	startURL      string
	startRef      string
	startName     string
	startGoal     string
	startAreas    string
	startInclude  []string
	startExclude  []string
	startNoAttach bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new analysis run",
	Long: `Starts a repository analysis run on the reader backend.

The repository tree is fetched from GitHub up front so the backend knows
which files are in scope. Use --include and --exclude glob patterns to
narrow the selection; excluded files are sent as ignored so the analyzer
skips them.

By default the command attaches to the new run and streams progress until
the analysis finishes or you detach with Ctrl+C.

Example:
  readerctl start --url https://github.com/org/repo --goal "Understand the auth layer"
  readerctl start --url https://github.com/org/repo --ref v2.1.0 --include "src/**" --exclude "*_test.go"
  readerctl start --url https://github.com/org/repo --goal "Map the data model" --no-attach`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startURL, "url", "u", "", "GitHub repository URL (required)")
	startCmd.Flags().StringVar(&startRef, "ref", "main", "git ref to analyze")
	startCmd.Flags().StringVarP(&startName, "name", "n", "", "repository display name (default: derived from URL)")
	startCmd.Flags().StringVarP(&startGoal, "goal", "g", "", "main goal of the analysis (required)")
	startCmd.Flags().StringVar(&startAreas, "areas", "", "specific areas to focus on")
	startCmd.Flags().StringSliceVar(&startInclude, "include", nil, "glob patterns for files to analyze (default: all)")
	startCmd.Flags().StringSliceVar(&startExclude, "exclude", nil, "glob patterns for files to skip")
	startCmd.Flags().BoolVar(&startNoAttach, "no-attach", false, "start the run and exit without attaching")

	startCmd.MarkFlagRequired("url")
	startCmd.MarkFlagRequired("goal")

	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, env, cwd, err := setup()
	if err != nil {
		return err
	}

	owner, repo, err := githubfs.ParseRepoURL(startURL)
	if err != nil {
		return err
	}

	repoName := startName
	if repoName == "" {
		repoName = repo
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fetching tree for %s/%s@%s...\n", owner, repo, startRef)

	gh := newGithubClient(cfg, env)
	tree, err := gh.RepoTree(ctx, owner, repo, startRef)
	if err != nil {
		return fmt.Errorf("failed to fetch repository tree: %w", err)
	}

	files := selectFiles(tree.Entries, startInclude, startExclude)
	included := 0
	for _, f := range files {
		if f.Type == api.FileTypeFile && f.Status == api.FileStatusPending {
			included++
		}
	}
	if included == 0 {
		return fmt.Errorf("no files selected for analysis (check --include/--exclude patterns)")
	}
	fmt.Fprintf(out, "Selected %d files for analysis.\n", included)

	gateway := newGateway(cfg, env)
	session := flow.NewSession(gateway, flow.WithInterval(cfg.PollInterval()))
	defer session.Close()

	runID, err := session.Start(ctx, api.AnalysisConfig{
		GithubURL:     startURL,
		GithubRef:     startRef,
		RepoName:      repoName,
		MainGoal:      startGoal,
		SpecificAreas: startAreas,
		Files:         files,
	})
	if err != nil {
		return fmt.Errorf("failed to start analysis: %w", err)
	}

	store := newStore(cwd)
	if err := store.SaveRun(&state.Run{
		RunID:     runID,
		RepoName:  repoName,
		GithubURL: startURL,
		GithubRef: startRef,
		MainGoal:  startGoal,
		StartedAt: timeNow(),
	}); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if startNoAttach {
		fmt.Fprintf(out, "Run %s started. Attach with: readerctl attach %s\n", runID, runID)
		return nil
	}

	prompter := tui.NewPrompter(cmd.InOrStdin(), out)
	return watchRun(ctx, session, store, out, prompter)
}

// selectFiles turns a repository tree into the backend's file selection
// list. Files matching an exclude pattern, or missing from a non-empty
// include set, are marked ignored.
func selectFiles(entries []githubfs.TreeEntry, include, exclude []string) []api.FileRecord {
	files := make([]api.FileRecord, 0, len(entries))
	for _, e := range entries {
		rec := api.FileRecord{Path: e.Path, Type: api.FileTypeFile, Status: api.FileStatusPending}
		if e.Type == githubfs.EntryTypeDirectory {
			rec.Type = api.FileTypeDirectory
		} else {
			if len(include) > 0 && !matchAny(include, e.Path) {
				rec.Status = api.FileStatusIgnored
			}
			if matchAny(exclude, e.Path) {
				rec.Status = api.FileStatusIgnored
			}
		}
		files = append(files, rec)
	}
	return files
}

// matchAny matches a path against glob patterns. Patterns apply to the
// full path, the base name, and any trailing path suffix, so "src/**"
// and "*_test.go" both work the way users expect.
func matchAny(patterns []string, p string) bool {
	for _, pat := range patterns {
		if strings.HasSuffix(pat, "/**") {
			prefix := strings.TrimSuffix(pat, "/**")
			if p == prefix || strings.HasPrefix(p, prefix+"/") {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pat, p); ok {
			return true
		}
		if ok, _ := path.Match(pat, path.Base(p)); ok {
			return true
		}
	}
	return false
}
