// Package refresh implements the synchronization state machine for one
// repository and the batch orchestrator that drives it across the whole
// workspace.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kitsuyui/mure/internal/git"
	gh "github.com/kitsuyui/mure/internal/github"
)

// SkipReason says why a repository was left untouched. Skips are first-class
// outcomes, not errors.
type SkipReason string

const (
	// SkipNotARepository means the path carries no git metadata.
	SkipNotARepository SkipReason = "not_a_repository"
	// SkipEmptyRepository means the repository has no commits yet.
	SkipEmptyRepository SkipReason = "empty_repository"
	// SkipNoRemote means no remote is configured to synchronize against.
	SkipNoRemote SkipReason = "no_remote"
)

// Outcome is the terminal state of refreshing one repository: either a skip
// with its reason, or an update with the transcript of what happened.
type Outcome struct {
	Skip SkipReason
	// SwitchedToDefault stays false: switching is reported through the
	// transcript, not this flag.
	SwitchedToDefault bool
	Transcript        []string
}

// Skipped reports whether the repository was left untouched.
func (o Outcome) Skipped() bool {
	return o.Skip != ""
}

// Message renders the transcript as printable text.
func (o Outcome) Message() string {
	return strings.Join(o.Transcript, "\n")
}

// Repository is the capability surface the state machine needs. *git.Repo
// implements it.
type Repository interface {
	Dir() string
	HasRemote(ctx context.Context) (bool, error)
	IsEmpty(ctx context.Context) (bool, error)
	IsClean(ctx context.Context) (bool, error)
	FetchPrune(ctx context.Context) (git.Interpreted[struct{}], error)
	Switch(ctx context.Context, branch string) (git.Interpreted[struct{}], error)
	PullFastForward(ctx context.Context, remote, branch string) (git.Interpreted[git.FastForwardOutcome], error)
	MergedBranches(ctx context.Context) (git.Interpreted[[]string], error)
	DeleteBranch(ctx context.Context, branch string) (git.Interpreted[struct{}], error)
}

// Opener detects and opens repositories on disk.
type Opener interface {
	IsRepository(path string) bool
	Open(path string) (Repository, error)
}

// GitOpener opens repositories through the external git binary.
type GitOpener struct {
	Runner *git.Runner
}

func (o GitOpener) IsRepository(path string) bool {
	return git.IsRepository(path)
}

func (o GitOpener) Open(path string) (Repository, error) {
	return git.OpenWith(path, o.Runner)
}

// Refresher runs the refresh state machine for single repositories.
type Refresher struct {
	opener   Opener
	branches gh.Resolver
	log      *slog.Logger
}

// NewRefresher wires a Refresher with its collaborators. The logger may be
// nil.
func NewRefresher(opener Opener, branches gh.Resolver, log *slog.Logger) *Refresher {
	return &Refresher{
		opener:   opener,
		branches: branches,
		log:      log,
	}
}

// Refresh synchronizes the repository at path with its upstream: fetch and
// prune, switch to the default branch when the tree is clean, fast-forward,
// and delete local branches already merged. Skips are returned as outcomes;
// any command or environment failure aborts the refresh with an error.
func (r *Refresher) Refresh(ctx context.Context, path string, verbosity Verbosity) (Outcome, error) {
	if !r.opener.IsRepository(path) {
		return Outcome{Skip: SkipNotARepository}, nil
	}

	repo, err := r.opener.Open(path)
	if err != nil {
		return Outcome{}, err
	}

	hasRemote, err := repo.HasRemote(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !hasRemote {
		return Outcome{Skip: SkipNoRemote}, nil
	}

	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if empty {
		return Outcome{Skip: SkipEmptyRepository}, nil
	}

	defaultBranch, err := r.branches.DefaultBranch(ctx, path)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolve default branch: %w", err)
	}

	if r.log != nil {
		r.log.Debug("refreshing repository", "path", path, "default_branch", defaultBranch)
	}

	if _, err := repo.FetchPrune(ctx); err != nil {
		return Outcome{}, err
	}

	var transcript []string

	clean, err := repo.IsClean(ctx)
	if err != nil {
		return Outcome{}, err
	}
	// Never interrupt uncommitted work: a dirty tree stays on its branch.
	if clean {
		if _, err := repo.Switch(ctx, defaultBranch); err != nil {
			return Outcome{}, err
		}
		transcript = append(transcript, "Switched to "+defaultBranch)
	}

	// origin is hardcoded. Repositories with several remotes are only ever
	// synchronized against origin.
	pull, err := repo.PullFastForward(ctx, "origin", defaultBranch)
	if err != nil {
		return Outcome{}, err
	}
	transcript = appendPullLines(transcript, verbosity, pull)

	merged, err := repo.MergedBranches(ctx)
	if err != nil {
		return Outcome{}, err
	}
	for _, branch := range merged.Value {
		if branch == defaultBranch {
			continue
		}
		if _, err := repo.DeleteBranch(ctx, branch); err != nil {
			return Outcome{}, err
		}
		transcript = append(transcript, "Deleted branch "+branch)
	}

	return Outcome{Transcript: transcript}, nil
}

// appendPullLines maps a pull outcome onto transcript lines. An aborted pull
// (divergence) records nothing; it is reported by the absence of progress,
// not treated as a failure.
func appendPullLines(transcript []string, verbosity Verbosity, pull git.Interpreted[git.FastForwardOutcome]) []string {
	var status string
	switch pull.Value {
	case git.AlreadyUpToDate:
		status = "Already up to date"
	case git.FastForwarded:
		status = "Fast-forwarded"
	default:
		return transcript
	}

	switch verbosity {
	case Quiet:
		return transcript
	case Verbose:
		return append(transcript, status, pull.Raw.Stderr, pull.Raw.Stdout)
	default:
		return append(transcript, status)
	}
}
