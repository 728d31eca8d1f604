package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codereader/readerctl/internal/githubfs"
)

var (
	treeRef string
	catRef  string

	searchRef string
	searchExt string
	searchMax int
)

var treeCmd = &cobra.Command{
	Use:   "tree <repo-url>",
	Short: "List the files of a GitHub repository",
	Long: `Fetches and prints the recursive file tree of a repository.

Useful for choosing --include/--exclude patterns before starting a run.

Example:
  readerctl tree https://github.com/org/repo
  readerctl tree https://github.com/org/repo --ref v2.1.0`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

var catCmd = &cobra.Command{
	Use:   "cat <repo-url> <path>",
	Short: "Print a file from a GitHub repository",
	Args:  cobra.ExactArgs(2),
	RunE:  runCat,
}

var searchCmd = &cobra.Command{
	Use:   "search <repo-url> <query>",
	Short: "Find files in a GitHub repository by name",
	Long: `Matches the query against file names and paths, best matches first.

Example:
  readerctl search https://github.com/org/repo handler
  readerctl search https://github.com/org/repo config --ext .ts`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	treeCmd.Flags().StringVar(&treeRef, "ref", "main", "git ref to list")
	catCmd.Flags().StringVar(&catRef, "ref", "main", "git ref to read from")
	searchCmd.Flags().StringVar(&searchRef, "ref", "main", "git ref to search")
	searchCmd.Flags().StringVar(&searchExt, "ext", "", "restrict matches to this extension (\".ts\")")
	searchCmd.Flags().IntVar(&searchMax, "max", 20, "maximum number of results")
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(searchCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, env, _, err := setup()
	if err != nil {
		return err
	}

	owner, repo, err := githubfs.ParseRepoURL(args[0])
	if err != nil {
		return err
	}

	gh := newGithubClient(cfg, env)
	tree, err := gh.RepoTree(cmd.Context(), owner, repo, treeRef)
	if err != nil {
		return fmt.Errorf("failed to fetch repository tree: %w", err)
	}

	entries := make([]githubfs.TreeEntry, len(tree.Entries))
	copy(entries, tree.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	out := cmd.OutOrStdout()
	for _, e := range entries {
		if e.Type == githubfs.EntryTypeDirectory {
			fmt.Fprintf(out, "%s/\n", e.Path)
			continue
		}
		fmt.Fprintln(out, e.Path)
	}
	return nil
}

func runCat(cmd *cobra.Command, args []string) error {
	cfg, env, _, err := setup()
	if err != nil {
		return err
	}

	owner, repo, err := githubfs.ParseRepoURL(args[0])
	if err != nil {
		return err
	}

	gh := newGithubClient(cfg, env)
	content, err := gh.ReadFile(cmd.Context(), owner, repo, args[1], catRef)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, env, _, err := setup()
	if err != nil {
		return err
	}

	owner, repo, err := githubfs.ParseRepoURL(args[0])
	if err != nil {
		return err
	}

	gh := newGithubClient(cfg, env)
	results, err := gh.SearchFiles(cmd.Context(), owner, repo, searchRef, args[1], githubfs.SearchOptions{
		Extension:  searchExt,
		MaxResults: searchMax,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching files.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintln(out, r.Path)
	}
	return nil
}
