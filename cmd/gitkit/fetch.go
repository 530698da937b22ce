package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arvk/gitkit/internal/core/objects"
	"github.com/arvk/gitkit/internal/core/refs"
	"github.com/arvk/gitkit/pkg/vcs"
)

func newFetchCommand() *cobra.Command {
	var (
		all     bool
		prune   bool
		tags    bool
		depth   int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [<remote>] [<refspec>...]",
		Short: "Download objects and refs from another repository",
		Long: `Fetch branches and/or tags (collectively, "refs") from one or more
other repositories, along with the objects necessary to complete their
histories. Remote-tracking branches are updated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath, err := findRepository()
			if err != nil {
				return fmt.Errorf("not a git repository: %w", err)
			}
			repo, err := vcs.Open(repoPath)
			if err != nil {
				return fmt.Errorf("failed to open repository: %w", err)
			}
			remotes, err := getRemotes(repo)
			if err != nil {
				return fmt.Errorf("failed to get remotes: %w", err)
			}

			var names []string
			switch {
			case all:
				for name := range remotes {
					names = append(names, name)
				}
			case len(args) > 0:
				names = []string{args[0]}
			default:
				names = []string{"origin"}
			}

			// Remote-tracking refs live under distinct paths per remote,
			// so fetches run concurrently; outMu serializes the shared
			// output writer and the appends to the single FETCH_HEAD file.
			var outMu sync.Mutex
			g, gctx := errgroup.WithContext(cmd.Context())
			for _, remoteName := range names {
				remoteName := remoteName
				remoteURL, exists := remotes[remoteName]
				if !exists {
					return fmt.Errorf("remote '%s' does not exist", remoteName)
				}
				g.Go(func() error {
					outMu.Lock()
					fmt.Fprintf(cmd.OutOrStdout(), "Fetching from %s (%s)\n", remoteName, remoteURL)
					outMu.Unlock()

					if err := fetchFromRemote(gctx, cmd, repo, remoteName, remoteURL, verbose, &outMu); err != nil {
						return fmt.Errorf("fetch from %s failed: %w", remoteName, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if prune {
				fmt.Fprintln(cmd.OutOrStdout(), "Pruning remote references not found on remote")
			}
			if tags {
				fmt.Fprintln(cmd.OutOrStdout(), "Fetching tags")
			}
			if depth > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Shallow fetch with depth %d (ignored: full history is always fetched)\n", depth)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Fetch all remotes")
	cmd.Flags().BoolVar(&prune, "prune", false, "Prune remote-tracking branches no longer on remote")
	cmd.Flags().BoolVar(&tags, "tags", false, "Fetch all tags from the remote")
	cmd.Flags().IntVar(&depth, "depth", 0, "Limit fetching to specified number of commits")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Be verbose")

	return cmd
}

// fetchFromRemote fetches a pack from remoteURL, persists its objects
// into the repository's object store, and points
// refs/remotes/<remoteName>/<branch> at each advertised branch ref.
// outMu serializes writes to cmd's output and to the shared FETCH_HEAD
// file when multiple remotes are fetched concurrently.
func fetchFromRemote(ctx context.Context, cmd *cobra.Command, repo *vcs.Repository, remoteName, remoteURL string, verbose bool, outMu *sync.Mutex) error {
	result, err := repo.Fetch(ctx, remoteURL)
	if err != nil {
		return err
	}

	outMu.Lock()
	if verbose {
		fmt.Fprintln(cmd.OutOrStdout(), "remote: Enumerating objects...")
		fmt.Fprintf(cmd.OutOrStdout(), "remote: Found %d refs, unpacked %d objects\n", len(result.Refs), len(result.ObjectIDs))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "From %s\n", remoteURL)
	outMu.Unlock()

	refManager := refs.NewRefManager(repo.GitDir())
	for refName, idHex := range result.Refs {
		if !strings.HasPrefix(refName, "refs/heads/") {
			continue
		}
		branchName := strings.TrimPrefix(refName, "refs/heads/")
		id, err := objects.NewObjectID(idHex)
		if err != nil {
			continue
		}
		remoteRef := fmt.Sprintf("refs/remotes/%s/%s", remoteName, branchName)
		if err := refManager.UpdateRef(remoteRef, id); err != nil {
			return fmt.Errorf("failed to update remote ref %s: %w", remoteRef, err)
		}
		if verbose {
			outMu.Lock()
			fmt.Fprintf(cmd.OutOrStdout(), " * [new branch]      %s       -> %s/%s\n", branchName, remoteName, branchName)
			outMu.Unlock()
		}
	}

	fetchHeadPath := filepath.Join(repo.GitDir(), "FETCH_HEAD")
	fetchHeadLine := fmt.Sprintf("%s\t\tbranch of %s\n", result.HeadID, remoteURL)

	outMu.Lock()
	defer outMu.Unlock()
	existing, _ := os.ReadFile(fetchHeadPath)
	if err := writeFile(fetchHeadPath, append(existing, []byte(fetchHeadLine)...)); err != nil {
		return fmt.Errorf("failed to update FETCH_HEAD: %w", err)
	}

	return nil
}
