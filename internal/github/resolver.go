package gh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	github "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/kitsuyui/mure/internal/git"
	"github.com/kitsuyui/mure/internal/store"
)

// Resolver reports the default branch of the repository checked out at a
// local path.
type Resolver interface {
	DefaultBranch(ctx context.Context, repoDir string) (string, error)
}

// ErrNoDefaultBranch is returned when the hosting provider reports no
// default branch for a repository.
var ErrNoDefaultBranch = errors.New("failed to get default branch")

// CLIResolver asks the GitHub CLI. `gh repo view` infers the repository from
// the working directory's remotes, so the command runs inside repoDir.
type CLIResolver struct {
	Bin string // defaults to "gh"
}

func (r CLIResolver) DefaultBranch(ctx context.Context, repoDir string) (string, error) {
	bin := r.Bin
	if bin == "" {
		bin = "gh"
	}

	cmd := exec.CommandContext(ctx, bin,
		"repo", "view", "--json", "defaultBranchRef", "-t", "{{.defaultBranchRef.name}}")
	cmd.Dir = repoDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("gh repo view: %s", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("run gh: %w", err)
	}

	branch := strings.TrimRight(stdout.String(), "\n")
	if branch == "" {
		return "", ErrNoDefaultBranch
	}
	return branch, nil
}

// RESTResolver asks the GitHub REST API, for environments without the gh
// binary. The repository identity is recovered from the origin remote URL.
type RESTResolver struct {
	Client *github.Client
	Runner *git.Runner
}

// NewRESTResolver builds a RESTResolver authenticated with token.
func NewRESTResolver(ctx context.Context, token string, runner *git.Runner) *RESTResolver {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	client.UserAgent = defaultUserAgent
	return &RESTResolver{Client: client, Runner: runner}
}

func (r *RESTResolver) DefaultBranch(ctx context.Context, repoDir string) (string, error) {
	repo, err := git.OpenWith(repoDir, r.Runner)
	if err != nil {
		return "", err
	}
	remoteURL, err := repo.RemoteURL(ctx, "origin")
	if err != nil {
		return "", err
	}

	info, ok := store.ParseURL(strings.TrimSpace(remoteURL))
	if !ok {
		return "", fmt.Errorf("origin url %q is not a recognized github url", strings.TrimSpace(remoteURL))
	}

	var ghRepo *github.Repository
	err = withResolverRetry(ctx, func() error {
		var err error
		ghRepo, _, err = r.Client.Repositories.Get(ctx, info.Owner, info.Name)
		return classifyGitHubError(err)
	})
	if err != nil {
		return "", fmt.Errorf("get repository %s: %w", info.NameWithOwner(), err)
	}

	branch := ghRepo.GetDefaultBranch()
	if branch == "" {
		return "", ErrNoDefaultBranch
	}
	return branch, nil
}

func withResolverRetry(ctx context.Context, op func() error) error {
	c := &restClient{maxAttempts: defaultMaxAttempts, retryDelay: defaultRetryDelay}
	return c.withRetry(ctx, op)
}

// Chain tries each resolver in order and returns the first success. All
// failures are joined into one error so the caller sees every attempt.
type Chain []Resolver

func (c Chain) DefaultBranch(ctx context.Context, repoDir string) (string, error) {
	if len(c) == 0 {
		return "", errors.New("no default branch resolvers configured")
	}

	var errs []error
	for _, resolver := range c {
		branch, err := resolver.DefaultBranch(ctx, repoDir)
		if err == nil {
			return branch, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}

// NewResolver builds the production resolver: the gh CLI first, with a REST
// fallback when GH_TOKEN is set.
func NewResolver(ctx context.Context, runner *git.Runner) Resolver {
	chain := Chain{CLIResolver{}}
	if token := os.Getenv("GH_TOKEN"); token != "" {
		chain = append(chain, NewRESTResolver(ctx, token, runner))
	}
	return chain
}
