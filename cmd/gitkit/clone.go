package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arvk/gitkit/pkg/vcs"
)

func newCloneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <repository> [<directory>]",
		Short: "Clone a repository into a new directory",
		Long: `Clone a repository from a remote URL into a local directory:
discover its refs, fetch a pack for the chosen head, and set up
refs/heads/master and HEAD to point at it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := args[0]

			directory := getDirectoryNameFromURL(repository)
			if len(args) > 1 {
				directory = args[1]
			}

			return runClone(cmd, repository, directory)
		},
	}

	return cmd
}

func runClone(cmd *cobra.Command, repository, directory string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Cloning into '%s'...\n", directory)

	repo, err := vcs.Clone(context.Background(), repository, directory)
	if err != nil {
		return fmt.Errorf("clone failed: %w", err)
	}

	if err := addRemote(repo, "origin", repository); err != nil {
		return fmt.Errorf("failed to add remote: %w", err)
	}

	return nil
}

func getDirectoryNameFromURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")

	if idx := strings.LastIndexAny(url, "/:"); idx >= 0 {
		return filepath.Base(url[idx+1:])
	}
	return filepath.Base(url)
}

