package cli

import (
	"github.com/spf13/cobra"

	"github.com/codereader/readerctl/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "readerctl",
	Short: "Guided code analysis for GitHub repositories",
	Long: `Readerctl drives long-running repository analysis runs on a reader
backend. Start a run against a GitHub repository, watch the analyzer work
through files, and step in when it asks for review or a better goal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel(logging.LevelDebug)
		}
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("readerctl version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
