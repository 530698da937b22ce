package main

import (
	"fmt"

	"github.com/arvk/gitkit/internal/core/objects"
	"github.com/arvk/gitkit/pkg/vcs"
	"github.com/spf13/cobra"
)

func newLsTreeCommand() *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree <tree-ish>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := vcs.Open(".")
			if err != nil {
				return fmt.Errorf("not in a vcs repository: %w", err)
			}

			id, err := objects.NewObjectID(args[0])
			if err != nil {
				return fmt.Errorf("invalid object ID: %w", err)
			}

			obj, err := repo.ReadObject(id)
			if err != nil {
				return fmt.Errorf("failed to read object: %w", err)
			}

			tree, ok := obj.(*objects.Tree)
			if !ok {
				return fmt.Errorf("object %s is a %s, not a tree", id, obj.Type())
			}

			for _, entry := range tree.Entries() {
				if nameOnly {
					fmt.Fprintln(cmd.OutOrStdout(), entry.Name)
					continue
				}

				entryType := objects.TypeBlob
				if entry.Mode == objects.ModeTree {
					entryType = objects.TypeTree
				} else if entry.Mode == objects.ModeCommit {
					entryType = objects.TypeCommit
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%06o %s %s\t%s\n", entry.Mode, entryType, entry.ID, entry.Name)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "List only filenames")

	return cmd
}
