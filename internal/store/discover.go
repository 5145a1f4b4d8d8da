package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one repository discovered in the workspace, or the failure to
// resolve a particular symlink. LinkPath is the symlink itself, RealPath the
// canonical clone it points at.
type Entry struct {
	LinkPath string
	RealPath string
	Info     RepoInfo
	Err      error
}

// List enumerates the workspace symlinks under the base directory. Regular
// files and directories are skipped; a symlink that cannot be resolved or
// that does not point at a host/owner/name path inside the store yields an
// Entry carrying the error, leaving the remaining entries intact.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("read workspace dir: %w", err)
	}

	storeRoot := s.Root()
	if resolved, err := filepath.EvalSymlinks(storeRoot); err == nil {
		storeRoot = resolved
	}

	var entries []Entry
	for _, dirEntry := range dirEntries {
		linkPath := filepath.Join(s.BaseDir, dirEntry.Name())
		stat, err := os.Lstat(linkPath)
		if err != nil || stat.Mode()&os.ModeSymlink == 0 {
			continue
		}
		entries = append(entries, resolveEntry(linkPath, storeRoot))
	}
	return entries, nil
}

func resolveEntry(linkPath, storeRoot string) Entry {
	target, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return Entry{LinkPath: linkPath, Err: fmt.Errorf("resolve %s: %w", linkPath, err)}
	}

	rel, err := filepath.Rel(storeRoot, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return Entry{LinkPath: linkPath, Err: fmt.Errorf("%s resolves outside the repository store", linkPath)}
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	if len(segments) != 3 {
		return Entry{LinkPath: linkPath, Err: fmt.Errorf("%s does not resolve to a host/owner/name path", linkPath)}
	}

	return Entry{
		LinkPath: linkPath,
		RealPath: target,
		Info:     RepoInfo{Host: segments[0], Owner: segments[1], Name: segments[2]},
	}
}
