// Package cli provides the command-line interface for scout.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Aggregate posts on a topic and generate an intel brief",
	Long: "scout pulls recent posts about a topic from Twitter/X, Hacker News,\n" +
		"Bluesky, and Product Hunt, normalizes and deduplicates them, and hands\n" +
		"the aggregate to an LLM to produce an intel brief.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("scout %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".scout", "config directory")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
