package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arvk/gitkit/internal/core/objects"
	"github.com/arvk/gitkit/internal/core/refs"
	"github.com/arvk/gitkit/internal/pack"
	"github.com/arvk/gitkit/internal/transport"
)

// ErrAmbiguousHead is returned when a fetched pack's commit graph has
// more than one terminal commit (a commit that is not any other
// fetched commit's parent) and none of them matches the chosen head.
var ErrAmbiguousHead = errors.New("ambiguous head: fetched graph has multiple terminal commits")

// ErrNoRefs is returned when a remote advertises no refs at all.
var ErrNoRefs = errors.New("remote has no refs")

// FetchResult carries the outcome of fetching and unpacking a remote's
// pack, before any local ref bookkeeping.
type FetchResult struct {
	PackPath string
	HeadID   objects.ObjectID
	Refs     map[string]string
	ObjectIDs []objects.ObjectID
}

// Fetch discovers refs at a remote, negotiates and downloads the
// corresponding pack, persists the raw pack bytes, and parses it into
// the repository's object store. It does not touch any local ref.
func (r *Repository) Fetch(ctx context.Context, remoteURL string) (*FetchResult, error) {
	httpURL, err := transport.ParseGitURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote URL: %w", err)
	}

	t := transport.NewHTTPTransport(httpURL)

	discovery, err := t.DiscoverRefs(ctx, "git-upload-pack")
	if err != nil {
		return nil, fmt.Errorf("failed to discover refs: %w", err)
	}
	if len(discovery.Refs) == 0 {
		return nil, ErrNoRefs
	}

	headHex, headName := chooseHead(discovery.Refs, discovery.Order)
	headID, err := objects.NewObjectID(headHex)
	if err != nil {
		return nil, fmt.Errorf("invalid head object id %q: %w", headHex, err)
	}

	respBody, err := t.FetchPack(ctx, []string{headHex}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pack: %w", err)
	}
	defer respBody.Close()

	packStream, err := transport.StripNAK(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack response: %w", err)
	}

	packBytes, err := io.ReadAll(packStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack body: %w", err)
	}

	packPath, err := r.persistPack(headHex, packBytes)
	if err != nil {
		return nil, err
	}

	parser := pack.NewParser(r.storage)
	result, err := parser.Parse(packBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pack: %w", err)
	}

	resolvedHead, err := resolveTerminalCommit(r.storage, result.IDs, headID)
	if err != nil {
		return nil, err
	}

	_ = headName
	return &FetchResult{
		PackPath:  packPath,
		HeadID:    resolvedHead,
		Refs:      discovery.Refs,
		ObjectIDs: result.IDs,
	}, nil
}

// chooseHead picks the advertised ref named "HEAD" if present,
// otherwise the first non-HEAD ref in wire advertisement order.
func chooseHead(adv map[string]string, order []string) (hash, name string) {
	if id, ok := adv["HEAD"]; ok {
		return id, "HEAD"
	}

	for _, refName := range order {
		if refName == "HEAD" {
			continue
		}
		return adv[refName], refName
	}
	return "", ""
}

// resolveTerminalCommit finds the terminal commit of the fetched
// graph: a commit that appears among ids but is not any other fetched
// commit's parent. If more than one such commit exists, the one
// matching headID wins; failing that, headID itself is returned when it
// is any fetched commit, and only otherwise is the fetch ambiguous.
func resolveTerminalCommit(storage *objects.Storage, ids []objects.ObjectID, headID objects.ObjectID) (objects.ObjectID, error) {
	commits := make(map[objects.ObjectID]*objects.Commit)
	parents := make(map[objects.ObjectID]bool)

	for _, id := range ids {
		obj, err := storage.ReadObject(id)
		if err != nil {
			return objects.ObjectID{}, fmt.Errorf("failed to read fetched object %s: %w", id, err)
		}
		commit, ok := obj.(*objects.Commit)
		if !ok {
			continue
		}
		commits[id] = commit
	}

	for _, commit := range commits {
		for _, p := range commit.Parents() {
			parents[p] = true
		}
	}

	var terminal []objects.ObjectID
	for id := range commits {
		if !parents[id] {
			terminal = append(terminal, id)
		}
	}

	if len(terminal) == 1 {
		return terminal[0], nil
	}
	for _, id := range terminal {
		if id == headID {
			return id, nil
		}
	}
	if _, ok := commits[headID]; ok {
		return headID, nil
	}
	return objects.ObjectID{}, ErrAmbiguousHead
}

// persistPack writes the raw pack bytes to objects/pack/pack-<hash>.pack
// for post-mortem debuggability; nothing in the core re-reads it.
func (r *Repository) persistPack(hash string, data []byte) (string, error) {
	packDir := filepath.Join(r.gitDir, "objects", "pack")
	if err := os.MkdirAll(packDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create pack directory: %w", err)
	}
	path := filepath.Join(packDir, fmt.Sprintf("pack-%s.pack", hash))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to persist pack: %w", err)
	}
	return path, nil
}

// Clone initializes a new repository at directory and populates it
// from remoteURL: discover refs, fetch and unpack, then point
// refs/heads/master at the fetched head and HEAD at that branch.
func Clone(ctx context.Context, remoteURL, directory string) (*Repository, error) {
	if _, err := os.Stat(directory); err == nil {
		return nil, fmt.Errorf("destination path %q already exists", directory)
	}

	repo, err := Init(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	result, err := repo.Fetch(ctx, remoteURL)
	if err != nil {
		os.RemoveAll(directory)
		return nil, err
	}

	refManager := refs.NewRefManager(repo.gitDir)
	if err := refManager.CreateBranch("master", result.HeadID); err != nil {
		return nil, fmt.Errorf("failed to write refs/heads/master: %w", err)
	}
	if err := refManager.SetHEAD("refs/heads/master"); err != nil {
		return nil, fmt.Errorf("failed to update HEAD: %w", err)
	}

	return repo, nil
}
