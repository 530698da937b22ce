package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvk/gitkit/internal/core/objects"
)

func TestNewCloneCommand(t *testing.T) {
	cmd := newCloneCommand()
	assert.NotNil(t, cmd)
	assert.Equal(t, "clone <repository> [<directory>]", cmd.Use)
	assert.Contains(t, cmd.Short, "Clone a repository")
}

func TestCloneCommand_DefaultDirectory(t *testing.T) {
	server, headHex := newSmartHTTPServer(t)
	defer server.Close()

	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(tmpDir))

	cmd := newCloneCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{server.URL})

	err := cmd.Execute()
	require.NoError(t, err)

	dirName := getDirectoryNameFromURL(server.URL)
	repoDir := filepath.Join(tmpDir, dirName)
	assert.DirExists(t, filepath.Join(repoDir, ".git"))

	headID, err := objects.NewObjectID(headHex)
	require.NoError(t, err)

	masterRef := filepath.Join(repoDir, ".git", "refs", "heads", "master")
	content, err := os.ReadFile(masterRef)
	require.NoError(t, err)
	assert.Equal(t, headID.String()+"\n", string(content))

	headFile, err := os.ReadFile(filepath.Join(repoDir, ".git", "HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master\n", string(headFile))

	configContent, err := os.ReadFile(filepath.Join(repoDir, ".git", "config"))
	require.NoError(t, err)
	assert.Contains(t, string(configContent), "[remote \"origin\"]")
	assert.Contains(t, string(configContent), "url = "+server.URL)
}

func TestCloneCommand_CustomDirectory(t *testing.T) {
	server, _ := newSmartHTTPServer(t)
	defer server.Close()

	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(tmpDir))

	cmd := newCloneCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{server.URL, "myrepo"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Cloning into 'myrepo'")
	assert.DirExists(t, filepath.Join(tmpDir, "myrepo", ".git"))
}

func TestCloneCommand_ExistingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(tmpDir))

	existing := filepath.Join(tmpDir, "existing")
	require.NoError(t, os.MkdirAll(existing, 0755))

	cmd := newCloneCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"https://example.com/repo.git", "existing"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestGetDirectoryNameFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"HTTPS with .git", "https://example.com/user/repo.git", "repo"},
		{"HTTPS without .git", "https://example.com/user/repo", "repo"},
		{"SSH URL", "git@example.com:user/repo.git", "repo"},
		{"trailing slash", "https://example.com/user/repo.git/", "repo"},
		{"bare name", "repo", "repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getDirectoryNameFromURL(tt.url))
		})
	}
}

func TestCloneCommand_NoURL(t *testing.T) {
	cmd := newCloneCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestCloneCommand_NoRefs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "info/refs") {
			w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
			w.Write([]byte("0000"))
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(tmpDir))

	cmd := newCloneCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{server.URL, "empty"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.NoDirExists(t, filepath.Join(tmpDir, "empty"))
}
