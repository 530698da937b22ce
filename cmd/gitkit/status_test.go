package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvk/gitkit/internal/core/objects"
	"github.com/arvk/gitkit/internal/core/refs"
	"github.com/arvk/gitkit/pkg/vcs"
)

func TestNewStatusCommand(t *testing.T) {
	cmd := newStatusCommand()
	assert.NotNil(t, cmd)
	assert.Equal(t, "status", cmd.Use)
}

func TestStatusCommand_NoCommits(t *testing.T) {
	tmpDir := t.TempDir()
	repo, err := vcs.Init(filepath.Join(tmpDir, "repo"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repo.Path(), "a.txt"), []byte("a\n"), 0644))

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(repo.Path()))

	cmd := newStatusCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "untracked: a.txt")
}

func TestStatusCommand_ModifiedAndDeleted(t *testing.T) {
	tmpDir := t.TempDir()
	repo, err := vcs.Init(filepath.Join(tmpDir, "repo"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repo.Path(), "a.txt"), []byte("a\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path(), "b.txt"), []byte("b\n"), 0644))

	blobA := objects.NewBlob([]byte("a\n"))
	require.NoError(t, repo.WriteObject(blobA))
	blobB := objects.NewBlob([]byte("b\n"))
	require.NoError(t, repo.WriteObject(blobB))

	tree := objects.NewTree()
	require.NoError(t, tree.AddEntry(objects.ModeBlob, "a.txt", blobA.ID()))
	require.NoError(t, tree.AddEntry(objects.ModeBlob, "b.txt", blobB.ID()))
	require.NoError(t, repo.WriteObject(tree))

	sig := objects.Signature{Name: "t", Email: "t@example.com", When: time.Unix(0, 0)}
	commit, err := repo.CreateCommit(tree.ID(), nil, sig, sig, "initial\n")
	require.NoError(t, err)

	refManager := refs.NewRefManager(repo.GitDir())
	require.NoError(t, refManager.CreateBranch("master", commit.ID()))
	require.NoError(t, refManager.SetHEAD("refs/heads/master"))

	// Modify a.txt, delete b.txt, add an untracked file.
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path(), "a.txt"), []byte("changed\n"), 0644))
	require.NoError(t, os.Remove(filepath.Join(repo.Path(), "b.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path(), "c.txt"), []byte("c\n"), 0644))

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(repo.Path()))

	cmd := newStatusCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "modified: a.txt")
	assert.Contains(t, out, "deleted: b.txt")
	assert.Contains(t, out, "untracked: c.txt")
}
