// Package store manages the on-disk repository layout. Real clones live
// under <base>/repo/<host>/<owner>/<name>, and each repository is exposed to
// the user through a <base>/<name> symlink next to the store.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the clone layout rooted at a base directory.
type Store struct {
	BaseDir string
}

// New returns a Store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

// Root returns the directory that holds the real clones.
func (s *Store) Root() string {
	return filepath.Join(s.BaseDir, "repo")
}

// RepoPath returns the canonical clone location for a repository.
func (s *Store) RepoPath(info RepoInfo) string {
	return filepath.Join(s.Root(), info.Host, info.Owner, info.Name)
}

// WorkPath returns the workspace symlink location for a repository name.
func (s *Store) WorkPath(name string) string {
	return filepath.Join(s.BaseDir, name)
}

// ResolveWorkPath returns the workspace directory for name, failing when
// nothing by that name has been cloned.
func (s *Store) ResolveWorkPath(name string) (string, error) {
	path := s.WorkPath(name)
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return "", fmt.Errorf("%s is not a git repository", path)
	}
	return path, nil
}
