package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/arvk/gitkit/internal/core/objects"
	"github.com/arvk/gitkit/pkg/vcs"
	"github.com/spf13/cobra"
)

func newCommitTreeCommand() *cobra.Command {
	var (
		parentHexes []string
		message     string
	)

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>]... [-m <message>]",
		Short: "Create a new commit object from a tree and parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := vcs.Open(".")
			if err != nil {
				return fmt.Errorf("not in a vcs repository: %w", err)
			}

			treeID, err := objects.NewObjectID(args[0])
			if err != nil {
				return fmt.Errorf("invalid tree ID: %w", err)
			}
			if obj, err := repo.ReadObject(treeID); err != nil {
				return fmt.Errorf("failed to read tree %s: %w", treeID, err)
			} else if obj.Type() != objects.TypeTree {
				return fmt.Errorf("object %s is a %s, not a tree", treeID, obj.Type())
			}

			parents := make([]objects.ObjectID, 0, len(parentHexes))
			for _, hex := range parentHexes {
				id, err := objects.NewObjectID(hex)
				if err != nil {
					return fmt.Errorf("invalid parent ID %q: %w", hex, err)
				}
				parents = append(parents, id)
			}

			if message == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read commit message from stdin: %w", err)
				}
				message = string(data)
			}
			if message == "" {
				return fmt.Errorf("aborting commit due to empty commit message")
			}

			author, err := authorSignature()
			if err != nil {
				return fmt.Errorf("invalid GIT_AUTHOR_DATE: %w", err)
			}
			committer, err := committerSignature()
			if err != nil {
				return fmt.Errorf("invalid GIT_COMMITTER_DATE: %w", err)
			}
			commit, err := repo.CreateCommit(treeID, parents, author, committer, message)
			if err != nil {
				return fmt.Errorf("failed to create commit: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), commit.ID())
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parentHexes, "parent", "p", nil, "ID of a parent commit object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")

	return cmd
}

// authorSignature builds the commit's author signature from
// GIT_AUTHOR_NAME, GIT_AUTHOR_EMAIL, and GIT_AUTHOR_DATE, falling back
// to a placeholder identity and the current time when unset.
func authorSignature() (objects.Signature, error) {
	return envSignature("GIT_AUTHOR_NAME", "GIT_AUTHOR_EMAIL", "GIT_AUTHOR_DATE")
}

// committerSignature builds the commit's committer signature from
// GIT_COMMITTER_NAME, GIT_COMMITTER_EMAIL, and GIT_COMMITTER_DATE.
func committerSignature() (objects.Signature, error) {
	return envSignature("GIT_COMMITTER_NAME", "GIT_COMMITTER_EMAIL", "GIT_COMMITTER_DATE")
}

// envSignature reads a name/email/date triple of environment variables
// into a Signature. dateVar holds "<epoch> <tz>" (e.g. "1234567890
// -0700"); if unset, the current time is used.
func envSignature(nameVar, emailVar, dateVar string) (objects.Signature, error) {
	name := os.Getenv(nameVar)
	if name == "" {
		name = "VCS User"
	}
	email := os.Getenv(emailVar)
	if email == "" {
		email = "user@example.com"
	}

	when := time.Now()
	if raw := os.Getenv(dateVar); raw != "" {
		parts := strings.Fields(raw)
		if len(parts) != 2 {
			return objects.Signature{}, fmt.Errorf("expected %q in %q format, got %q", dateVar, "<epoch> <tz>", raw)
		}
		parsed, err := objects.ParseUnixTimestamp(parts[0], parts[1])
		if err != nil {
			return objects.Signature{}, fmt.Errorf("%s: %w", dateVar, err)
		}
		when = parsed
	}

	return objects.Signature{Name: name, Email: email, When: when}, nil
}
