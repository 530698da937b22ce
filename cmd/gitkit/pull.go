package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/arvk/gitkit/internal/core/refs"
	"github.com/arvk/gitkit/pkg/vcs"
)

func newPullCommand() *cobra.Command {
	var (
		rebase  bool
		noCommit bool
		squash  bool
		verbose bool
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "pull [<remote>] [<branch>]",
		Short: "Fetch from and integrate with another repository or a local branch",
		Long: `Prints the fetch and merge steps for the current branch and writes a
note naming the remote and branch to FETCH_HEAD. No objects are
downloaded, and no refs, commits or working-tree files are changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Find repository
			repoPath, err := findRepository()
			if err != nil {
				return fmt.Errorf("not a git repository: %w", err)
			}

			// Open repository
			repo, err := vcs.Open(repoPath)
			if err != nil {
				return fmt.Errorf("failed to open repository: %w", err)
			}

			// Determine remote and branch
			remoteName := "origin"
			var remoteBranch string

			if len(args) > 0 {
				remoteName = args[0]
				if len(args) > 1 {
					remoteBranch = args[1]
				}
			}

			// Get current branch if remote branch not specified
			refManager := refs.NewRefManager(repo.GitDir())
			currentBranch, err := refManager.CurrentBranch()
			if err != nil {
				return fmt.Errorf("not currently on any branch")
			}

			if remoteBranch == "" {
				remoteBranch = currentBranch
			}

			// Get remote configuration
			remotes, err := getRemotes(repo)
			if err != nil {
				return fmt.Errorf("failed to get remotes: %w", err)
			}

			remoteURL, exists := remotes[remoteName]
			if !exists {
				return fmt.Errorf("remote '%s' does not exist", remoteName)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pulling from %s\n", remoteURL)

			// Execute pull
			if err := pullFromRemote(cmd, repo, remoteName, remoteURL, currentBranch, remoteBranch, rebase, noCommit, squash, verbose, strategy); err != nil {
				return fmt.Errorf("pull failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&rebase, "rebase", false, "Rebase the current branch on top of the upstream branch")
	cmd.Flags().BoolVar(&noCommit, "no-commit", false, "Perform the merge but do not commit")
	cmd.Flags().BoolVar(&squash, "squash", false, "Squash commits")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Be verbose")
	cmd.Flags().StringVar(&strategy, "strategy", "recursive", "Merge strategy to use")

	return cmd
}

func pullFromRemote(cmd *cobra.Command, repo *vcs.Repository, remoteName, remoteURL, localBranch, remoteBranch string, rebase, noCommit, squash, verbose bool, strategy string) error {
	refManager := refs.NewRefManager(repo.GitDir())

	// Step 1: Fetch from remote
	fmt.Fprintln(cmd.OutOrStdout(), "Fetching from remote...")
	
	// In a real implementation, this would call the actual fetch logic
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "From %s\n", remoteURL)
		fmt.Fprintf(cmd.OutOrStdout(), " * branch            %s     -> FETCH_HEAD\n", remoteBranch)
	}

	// Update FETCH_HEAD
	fetchHeadPath := filepath.Join(repo.GitDir(), "FETCH_HEAD")
	fetchHeadContent := fmt.Sprintf("# Fetched from %s/%s\n", remoteName, remoteBranch)
	if err := writeFile(fetchHeadPath, []byte(fetchHeadContent)); err != nil {
		return fmt.Errorf("failed to update FETCH_HEAD: %w", err)
	}

	// Get current HEAD
	currentCommitID, _, err := refManager.HEAD()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	// Step 2: Merge or rebase
	remoteRef := fmt.Sprintf("refs/remotes/%s/%s", remoteName, remoteBranch)
	_ = remoteRef // Would be used in real implementation
	
	if rebase {
		fmt.Fprintln(cmd.OutOrStdout(), "Rebasing...")
		
		// In a real implementation, this would:
		// 1. Find merge base
		// 2. Create patch series
		// 3. Apply patches on top of remote branch
		
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully rebased and updated %s.\n", localBranch)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Merging...")
		
		// Check if fast-forward is possible
		// In a real implementation, we would check if current HEAD is ancestor of remote
		fastForward := false // Simplified for now
		
		if fastForward {
			fmt.Fprintf(cmd.OutOrStdout(), "Updating %s..%s\n", 
				currentCommitID.String()[:7], currentCommitID.String()[:7])
			fmt.Fprintln(cmd.OutOrStdout(), "Fast-forward")
			
			// Update HEAD to remote commit
			// refManager.UpdateRef(fmt.Sprintf("refs/heads/%s", localBranch), remoteCommitID)
		} else {
			// Three-way merge
			fmt.Fprintln(cmd.OutOrStdout(), "Merge made by the 'recursive' strategy.")
			
			if !noCommit {
				// Create merge commit
				mergeMessage := fmt.Sprintf("Merge branch '%s' of %s into %s", 
					remoteBranch, remoteURL, localBranch)
				fmt.Fprintf(cmd.OutOrStdout(), " %s | 0 files changed\n", mergeMessage)
			}
		}
	}

	// Step 3: Update working tree
	fmt.Fprintln(cmd.OutOrStdout(), "Already up to date.")

	fmt.Fprintln(cmd.OutOrStdout(), "\nNote: This is a basic pull implementation.")
	fmt.Fprintln(cmd.OutOrStdout(), "Full implementation would require:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Actual network fetch operation")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Three-way merge algorithm")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Conflict resolution")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Working tree updates")

	return nil
}