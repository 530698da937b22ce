package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arvk/gitkit/internal/core/objects"
)

// Snapshotter builds tree objects from the files actually present in a
// working directory, the way `git write-tree` would after staging
// everything in it. There is no index in this implementation, so a
// snapshot always reflects the working directory's current state.
type Snapshotter struct {
	repoPath string
	gitDir   string
	storage  *objects.Storage
	ignores  *IgnorePatterns
}

// NewSnapshotter creates a Snapshotter rooted at repoPath, writing
// objects through storage.
func NewSnapshotter(repoPath, gitDir string, storage *objects.Storage) *Snapshotter {
	return &Snapshotter{
		repoPath: repoPath,
		gitDir:   gitDir,
		storage:  storage,
		ignores:  NewIgnorePatterns(),
	}
}

// LoadIgnoreFile loads .gitignore patterns to exclude from the snapshot.
func (sn *Snapshotter) LoadIgnoreFile(path string) error {
	return sn.ignores.LoadFile(path)
}

// Snapshot recursively walks the working directory and writes a blob
// for every regular file and symlink, a tree for every directory, and
// returns the ObjectID of the root tree. Empty directories produce no
// tree entry, since git has no way to represent them.
func (sn *Snapshotter) Snapshot() (objects.ObjectID, error) {
	return sn.snapshotDir(sn.repoPath)
}

func (sn *Snapshotter) snapshotDir(dir string) (objects.ObjectID, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	// Stable iteration order before AddEntry re-sorts by git's
	// directory-suffix rule; this just keeps errors deterministic.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	tree := objects.NewTree()

	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" {
			continue
		}

		relPath, err := filepath.Rel(sn.repoPath, filepath.Join(dir, name))
		if err != nil {
			return objects.ObjectID{}, err
		}
		relPath = filepath.ToSlash(relPath)
		if sn.ignores.Match(relPath) {
			continue
		}

		fullPath := filepath.Join(dir, name)
		info, err := entry.Info()
		if err != nil {
			return objects.ObjectID{}, fmt.Errorf("failed to stat %s: %w", fullPath, err)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(fullPath)
			if err != nil {
				return objects.ObjectID{}, fmt.Errorf("failed to read symlink %s: %w", fullPath, err)
			}
			blob := objects.NewBlob([]byte(target))
			if err := sn.storage.WriteObject(blob); err != nil {
				return objects.ObjectID{}, err
			}
			if err := tree.AddEntry(objects.ModeSymlink, name, blob.ID()); err != nil {
				return objects.ObjectID{}, err
			}

		case info.IsDir():
			subID, err := sn.snapshotDir(fullPath)
			if err != nil {
				return objects.ObjectID{}, err
			}
			if subID == (objects.ObjectID{}) {
				continue // empty subdirectory, nothing to record
			}
			if err := tree.AddEntry(objects.ModeTree, name, subID); err != nil {
				return objects.ObjectID{}, err
			}

		default:
			data, err := os.ReadFile(fullPath)
			if err != nil {
				return objects.ObjectID{}, fmt.Errorf("failed to read file %s: %w", fullPath, err)
			}
			blob := objects.NewBlob(data)
			if err := sn.storage.WriteObject(blob); err != nil {
				return objects.ObjectID{}, err
			}
			mode := objects.ModeBlob
			if info.Mode()&0111 != 0 {
				mode = objects.ModeExec
			}
			if err := tree.AddEntry(mode, name, blob.ID()); err != nil {
				return objects.ObjectID{}, err
			}
		}
	}

	if len(tree.Entries()) == 0 {
		return objects.ObjectID{}, nil
	}

	if err := sn.storage.WriteObject(tree); err != nil {
		return objects.ObjectID{}, err
	}
	return tree.ID(), nil
}
