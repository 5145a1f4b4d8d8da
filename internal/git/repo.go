package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Repo runs git commands inside a single repository working directory. It is a
// thin capability facade: each method is a named interpretation of one
// command's output.
type Repo struct {
	dir    string
	runner *Runner
}

// Open returns a Repo rooted at dir. The directory must exist and be usable as
// a working tree.
func Open(dir string) (*Repo, error) {
	return OpenWith(dir, nil)
}

// OpenWith is Open with a caller-supplied Runner, for callers that pin or
// substitute the git binary. A nil runner falls back to the default.
func OpenWith(dir string, runner *Runner) (*Repo, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoWorkingDirectory)
	}
	if runner == nil {
		runner = &Runner{}
	}
	return &Repo{dir: dir, runner: runner}, nil
}

// IsRepository reports whether path carries git metadata (a .git directory or
// file, as in linked worktrees).
func IsRepository(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// Dir returns the working directory this Repo operates on.
func (r *Repo) Dir() string {
	return r.dir
}

// Run executes an arbitrary git command in the repository directory, returning
// the raw result regardless of exit code.
func (r *Repo) Run(ctx context.Context, args ...string) (RawResult, error) {
	return r.runner.Run(ctx, r.dir, args...)
}

// capture is Run for commands whose non-zero exit is unconditionally fatal.
func (r *Repo) capture(ctx context.Context, args ...string) (RawResult, error) {
	raw, err := r.Run(ctx, args...)
	if err != nil {
		return RawResult{}, err
	}
	if !raw.Succeeded() {
		return RawResult{}, &CommandError{Args: args, Raw: raw}
	}
	return raw, nil
}

// IsClean reports whether the working tree has no new, modified, or deleted
// entries in either the index or the working tree. Untracked files count as
// new entries and make the tree dirty.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	raw, err := r.capture(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(raw.Stdout) == "", nil
}

// HasRemote reports whether any remote is configured.
func (r *Repo) HasRemote(ctx context.Context) (bool, error) {
	raw, err := r.capture(ctx, "remote")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(raw.Stdout) != "", nil
}

// IsEmpty reports whether the repository has no commits yet (unborn HEAD).
func (r *Repo) IsEmpty(ctx context.Context) (bool, error) {
	raw, err := r.Run(ctx, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return false, err
	}
	return !raw.Succeeded(), nil
}

// CurrentBranch returns the branch HEAD points at. It fails when the
// repository has no commits or HEAD is detached.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	raw, err := r.capture(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(raw.Stdout)
	if name == "" || name == "HEAD" {
		return "", errors.New("head is not a branch")
	}
	return name, nil
}

// RemoteURL returns the fetch URL configured for the named remote.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	raw, err := r.capture(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw.Stdout), nil
}

// FetchPrune fetches from the configured remotes and drops stale
// remote-tracking refs. Any non-zero exit is fatal.
func (r *Repo) FetchPrune(ctx context.Context) (Interpreted[struct{}], error) {
	return r.runFatal(ctx, "fetch", "--prune")
}

// Switch checks out an existing local branch. Fatal on failure, for example
// when uncommitted changes conflict with the target branch.
func (r *Repo) Switch(ctx context.Context, branch string) (Interpreted[struct{}], error) {
	return r.runFatal(ctx, "switch", branch)
}

// PullFastForward runs a fast-forward-only pull against remote/branch and
// classifies the outcome from stdout. A non-zero exit is tolerated here and
// lands in the Aborted outcome; divergence is something to report, not an
// engineering error.
func (r *Repo) PullFastForward(ctx context.Context, remote, branch string) (Interpreted[FastForwardOutcome], error) {
	raw, err := r.Run(ctx, "pull", "--ff-only", remote, branch)
	if err != nil {
		return Interpreted[FastForwardOutcome]{}, err
	}
	return Interpreted[FastForwardOutcome]{Raw: raw, Value: classifyFastForward(raw.Stdout)}, nil
}

// MergedBranches lists local branches whose tip is reachable from HEAD.
func (r *Repo) MergedBranches(ctx context.Context) (Interpreted[[]string], error) {
	raw, err := r.Run(ctx, "for-each-ref", "--format=%(refname:short)", "refs/heads/**/*", "--merged")
	if err != nil {
		return Interpreted[[]string]{}, err
	}
	return Interpreted[[]string]{Raw: raw, Value: splitLines(raw.Stdout)}, nil
}

// DeleteBranch deletes a local branch. The returned CommandError carries git's
// stderr when the branch does not exist or is not fully merged.
func (r *Repo) DeleteBranch(ctx context.Context, branch string) (Interpreted[struct{}], error) {
	return r.runFatal(ctx, "branch", "-d", branch)
}

func (r *Repo) runFatal(ctx context.Context, args ...string) (Interpreted[struct{}], error) {
	raw, err := r.Run(ctx, args...)
	if err != nil {
		return Interpreted[struct{}]{}, err
	}
	if !raw.Succeeded() {
		return Interpreted[struct{}]{}, &CommandError{Args: args, Raw: raw}
	}
	return Interpreted[struct{}]{Raw: raw}, nil
}

// Clone runs git clone in parent, letting git create and populate the target
// directory. Any failure is fatal.
func Clone(ctx context.Context, runner *Runner, parent, url string) (Interpreted[struct{}], error) {
	if runner == nil {
		runner = &Runner{}
	}
	args := []string{"clone", url}
	raw, err := runner.Run(ctx, parent, args...)
	if err != nil {
		return Interpreted[struct{}]{}, err
	}
	if !raw.Succeeded() {
		return Interpreted[struct{}]{}, &CommandError{Args: args, Raw: raw}
	}
	return Interpreted[struct{}]{Raw: raw}, nil
}
