package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vcs",
		Short: "A git-compatible version control system",
		Long: `VCS is a version control system that reads and writes the same
object store, pack format, and smart HTTP protocol as Git.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	// Add commands
	rootCmd.AddCommand(
		newInitCommand(),
		newHashObjectCommand(),
		newCatFileCommand(),
		newLsTreeCommand(),
		newWriteTreeCommand(),
		newCommitTreeCommand(),
		newStatusCommand(),
		newCloneCommand(),
		newFetchCommand(),
		newPushCommand(),
		newPullCommand(),
		newBranchCommand(),
		newTagCommand(),
		newLogCommand(),
		newRemoteCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}