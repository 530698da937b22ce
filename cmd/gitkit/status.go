package main

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/arvk/gitkit/internal/core/objects"
	"github.com/arvk/gitkit/internal/core/refs"
	"github.com/arvk/gitkit/internal/core/workdir"
	"github.com/arvk/gitkit/pkg/vcs"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show untracked, modified, and deleted files in the working tree",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	return cmd
}

// runStatus compares the working directory against HEAD's tree (if any
// commit exists) and reports, per path, whether it is untracked,
// modified, deleted, or ignored. There is no index in this
// implementation, so "staged" has no meaning here: every difference
// from HEAD is reported directly against the working tree.
func runStatus(cmd *cobra.Command, args []string) error {
	repoPath, err := findRepository()
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}

	repo, err := vcs.Open(repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	refManager := refs.NewRefManager(repo.GitDir())
	headCommitID, _, err := refManager.HEAD()
	tracked := make(map[string]objects.ObjectID)
	if err == nil && !headCommitID.IsZero() {
		obj, err := repo.ReadObject(headCommitID)
		if err != nil {
			return fmt.Errorf("failed to read HEAD commit: %w", err)
		}
		commit, ok := obj.(*objects.Commit)
		if !ok {
			return fmt.Errorf("HEAD %s is not a commit", headCommitID)
		}
		if err := walkTreeBlobs(repo, commit.Tree(), "", tracked); err != nil {
			return fmt.Errorf("failed to walk HEAD tree: %w", err)
		}
	}

	scanner := workdir.NewScanner(repo.Path(), repo.GitDir())
	if err := scanner.LoadIgnoreFile(filepath.Join(repo.Path(), ".gitignore")); err != nil {
		return fmt.Errorf("failed to load .gitignore: %w", err)
	}

	files, err := scanner.ScanFiles()
	if err != nil {
		return fmt.Errorf("failed to scan working directory: %w", err)
	}

	seen := make(map[string]bool, len(files))
	statuses := make(map[string]workdir.Status)

	for _, file := range files {
		if scanner.IsIgnored(file.Path) {
			statuses[file.Path] = workdir.StatusIgnored
			continue
		}
		seen[file.Path] = true

		content, err := scanner.GetFileContent(file.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file.Path, err)
		}
		workingID := objects.NewBlob(content).ID()

		treeID, isTracked := tracked[file.Path]
		switch {
		case !isTracked:
			statuses[file.Path] = workdir.StatusUntracked
		case treeID != workingID:
			statuses[file.Path] = workdir.StatusModified
		}
	}

	for p := range tracked {
		if !seen[p] {
			statuses[p] = workdir.StatusDeleted
		}
	}

	paths := make([]string, 0, len(statuses))
	for p := range statuses {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to commit, working tree clean")
		return nil
	}

	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", statuses[p], p)
	}

	return nil
}

// walkTreeBlobs recursively records every blob entry reachable from
// treeID under prefix into out, keyed by slash-separated path.
func walkTreeBlobs(repo *vcs.Repository, treeID objects.ObjectID, prefix string, out map[string]objects.ObjectID) error {
	obj, err := repo.ReadObject(treeID)
	if err != nil {
		return fmt.Errorf("failed to read tree %s: %w", treeID, err)
	}
	tree, ok := obj.(*objects.Tree)
	if !ok {
		return fmt.Errorf("object %s is a %s, not a tree", treeID, obj.Type())
	}

	for _, entry := range tree.Entries() {
		entryPath := path.Join(prefix, entry.Name)
		if entry.Mode == objects.ModeTree {
			if err := walkTreeBlobs(repo, entry.ID, entryPath, out); err != nil {
				return err
			}
			continue
		}
		out[entryPath] = entry.ID
	}

	return nil
}
