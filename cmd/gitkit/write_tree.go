package main

import (
	"fmt"
	"path/filepath"

	"github.com/arvk/gitkit/internal/core/workdir"
	"github.com/arvk/gitkit/pkg/vcs"
	"github.com/spf13/cobra"
)

func newWriteTreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "Create a tree object from the current working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := vcs.Open(".")
			if err != nil {
				return fmt.Errorf("not in a vcs repository: %w", err)
			}

			sn := workdir.NewSnapshotter(repo.Path(), repo.GitDir(), repo.Storage())
			if err := sn.LoadIgnoreFile(filepath.Join(repo.Path(), ".gitignore")); err != nil {
				return fmt.Errorf("failed to load .gitignore: %w", err)
			}

			id, err := sn.Snapshot()
			if err != nil {
				return fmt.Errorf("failed to write tree: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	return cmd
}
