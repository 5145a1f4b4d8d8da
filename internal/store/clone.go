package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kitsuyui/mure/internal/git"
)

// ErrInvalidURL marks a clone URL that matches no accepted shape.
var ErrInvalidURL = errors.New("invalid repo url")

// Clone clones url into its canonical store location and exposes it through
// a workspace symlink. The symlink is only created once the clone itself
// succeeded; the git result is returned either way so callers can surface
// the command output.
func (s *Store) Clone(ctx context.Context, runner *git.Runner, url string) (git.Interpreted[struct{}], error) {
	info, ok := ParseURL(url)
	if !ok {
		return git.Interpreted[struct{}]{}, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}

	repoPath := s.RepoPath(info)
	if err := os.MkdirAll(repoPath, 0o755); err != nil {
		return git.Interpreted[struct{}]{}, fmt.Errorf("create store dir: %w", err)
	}

	// git names the checkout after the URL, so cloning from the parent
	// directory lands exactly on repoPath.
	result, err := git.Clone(ctx, runner, filepath.Dir(repoPath), url)
	if err != nil {
		return result, err
	}

	if err := os.Symlink(repoPath, s.WorkPath(info.Name)); err != nil {
		return result, fmt.Errorf("create workspace symlink: %w", err)
	}
	return result, nil
}
