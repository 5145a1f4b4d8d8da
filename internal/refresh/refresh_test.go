package refresh_test

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitsuyui/mure/internal/git"
	"github.com/kitsuyui/mure/internal/refresh"
	"github.com/kitsuyui/mure/internal/store"
)

type fakeRepo struct {
	dir       string
	hasRemote bool
	empty     bool
	clean     bool

	fetchErr  error
	switchErr error
	pull      git.Interpreted[git.FastForwardOutcome]
	pullErr   error
	merged    []string
	deleteErr map[string]error

	fetches  int
	switched []string
	deleted  []string
}

func (f *fakeRepo) Dir() string { return f.dir }

func (f *fakeRepo) HasRemote(context.Context) (bool, error) { return f.hasRemote, nil }

func (f *fakeRepo) IsEmpty(context.Context) (bool, error) { return f.empty, nil }

func (f *fakeRepo) IsClean(context.Context) (bool, error) { return f.clean, nil }

func (f *fakeRepo) FetchPrune(context.Context) (git.Interpreted[struct{}], error) {
	f.fetches++
	if f.fetchErr != nil {
		return git.Interpreted[struct{}]{}, f.fetchErr
	}
	return git.Interpreted[struct{}]{}, nil
}

func (f *fakeRepo) Switch(_ context.Context, branch string) (git.Interpreted[struct{}], error) {
	if f.switchErr != nil {
		return git.Interpreted[struct{}]{}, f.switchErr
	}
	f.switched = append(f.switched, branch)
	return git.Interpreted[struct{}]{}, nil
}

func (f *fakeRepo) PullFastForward(context.Context, string, string) (git.Interpreted[git.FastForwardOutcome], error) {
	if f.pullErr != nil {
		return git.Interpreted[git.FastForwardOutcome]{}, f.pullErr
	}
	return f.pull, nil
}

func (f *fakeRepo) MergedBranches(context.Context) (git.Interpreted[[]string], error) {
	return git.Interpreted[[]string]{Value: f.merged}, nil
}

func (f *fakeRepo) DeleteBranch(_ context.Context, branch string) (git.Interpreted[struct{}], error) {
	if err, ok := f.deleteErr[branch]; ok {
		return git.Interpreted[struct{}]{}, err
	}
	f.deleted = append(f.deleted, branch)
	return git.Interpreted[struct{}]{}, nil
}

type fakeOpener struct {
	repos    map[string]*fakeRepo
	openErrs map[string]error
}

func (o *fakeOpener) IsRepository(path string) bool {
	_, ok := o.repos[path]
	return ok
}

func (o *fakeOpener) Open(path string) (refresh.Repository, error) {
	if err, ok := o.openErrs[path]; ok {
		return nil, err
	}
	return o.repos[path], nil
}

type staticResolver struct {
	branch string
	err    error
}

func (r staticResolver) DefaultBranch(context.Context, string) (string, error) {
	return r.branch, r.err
}

var _ = Describe("Refresher", func() {
	const path = "/work/mure"

	var (
		ctx    context.Context
		repo   *fakeRepo
		opener *fakeOpener
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &fakeRepo{
			dir:       path,
			hasRemote: true,
			clean:     true,
			pull:      git.Interpreted[git.FastForwardOutcome]{Value: git.AlreadyUpToDate},
			merged:    []string{"main"},
		}
		opener = &fakeOpener{repos: map[string]*fakeRepo{path: repo}}
	})

	newRefresher := func(resolver staticResolver) *refresh.Refresher {
		return refresh.NewRefresher(opener, resolver, nil)
	}

	It("skips paths without git metadata", func() {
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, "/work/notes", refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Skip).To(Equal(refresh.SkipNotARepository))
		Expect(outcome.Skipped()).To(BeTrue())
		Expect(repo.fetches).To(BeZero())
	})

	It("propagates open failures as hard errors", func() {
		opener.openErrs = map[string]error{path: errors.New("permission denied")}
		r := newRefresher(staticResolver{branch: "main"})

		_, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).To(MatchError("permission denied"))
	})

	It("skips repositories with no remote", func() {
		repo.hasRemote = false
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Skip).To(Equal(refresh.SkipNoRemote))
		Expect(repo.fetches).To(BeZero())
	})

	It("skips repositories with no commits", func() {
		repo.empty = true
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Skip).To(Equal(refresh.SkipEmptyRepository))
		Expect(repo.fetches).To(BeZero())
	})

	It("fails before fetching when the default branch cannot be resolved", func() {
		r := newRefresher(staticResolver{err: errors.New("gh unavailable")})

		_, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).To(MatchError(ContainSubstring("resolve default branch")))
		Expect(repo.fetches).To(BeZero())
	})

	It("switches to the default branch when the tree is clean", func() {
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Skipped()).To(BeFalse())
		Expect(outcome.SwitchedToDefault).To(BeFalse())
		Expect(repo.switched).To(Equal([]string{"main"}))
		Expect(outcome.Transcript).To(Equal([]string{"Switched to main", "Already up to date"}))
	})

	It("leaves a dirty tree on its branch but still prunes merged branches", func() {
		repo.clean = false
		repo.merged = []string{"main", "feature"}
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.switched).To(BeEmpty())
		Expect(repo.deleted).To(Equal([]string{"feature"}))
		Expect(outcome.Transcript).To(Equal([]string{"Already up to date", "Deleted branch feature"}))
	})

	It("records a fast-forward in the transcript", func() {
		repo.pull = git.Interpreted[git.FastForwardOutcome]{Value: git.FastForwarded}
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Transcript).To(ContainElement("Fast-forwarded"))
	})

	It("suppresses pull status lines when quiet", func() {
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Quiet)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Transcript).To(Equal([]string{"Switched to main"}))
	})

	It("appends raw pull output when verbose", func() {
		repo.pull = git.Interpreted[git.FastForwardOutcome]{
			Raw: git.RawResult{
				Stdout: "Updating abc..def\nFast-forward\n",
				Stderr: "From github.com:kitsuyui/mure\n",
			},
			Value: git.FastForwarded,
		}
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Verbose)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Transcript).To(Equal([]string{
			"Switched to main",
			"Fast-forwarded",
			"From github.com:kitsuyui/mure\n",
			"Updating abc..def\nFast-forward\n",
		}))
	})

	It("records nothing for an aborted pull", func() {
		repo.clean = false
		repo.pull = git.Interpreted[git.FastForwardOutcome]{Value: git.Aborted}
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Transcript).To(BeEmpty())
		Expect(outcome.Message()).To(Equal(""))
	})

	It("deletes every merged branch except the default", func() {
		repo.merged = []string{"main", "feature", "old-fix"}
		r := newRefresher(staticResolver{branch: "main"})

		outcome, err := r.Refresh(ctx, path, refresh.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.deleted).To(Equal([]string{"feature", "old-fix"}))
		Expect(outcome.Transcript).To(ContainElements("Deleted branch feature", "Deleted branch old-fix"))
	})

	It("propagates switch failures", func() {
		repo.switchErr = &git.CommandError{Args: []string{"switch", "main"}}
		r := newRefresher(staticResolver{branch: "main"})

		_, err := r.Refresh(ctx, path, refresh.Normal)
		var cmdErr *git.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
		Expect(repo.deleted).To(BeEmpty())
	})

	It("propagates fetch failures", func() {
		repo.fetchErr = &git.CommandError{Args: []string{"fetch", "--prune"}}
		r := newRefresher(staticResolver{branch: "main"})

		_, err := r.Refresh(ctx, path, refresh.Normal)
		var cmdErr *git.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
		Expect(repo.switched).To(BeEmpty())
	})

	It("propagates pull execution failures", func() {
		repo.pullErr = &git.ExecError{Args: []string{"pull"}, Err: errors.New("binary missing")}
		r := newRefresher(staticResolver{branch: "main"})

		_, err := r.Refresh(ctx, path, refresh.Normal)
		var execErr *git.ExecError
		Expect(errors.As(err, &execErr)).To(BeTrue())
	})

	It("propagates branch deletion failures", func() {
		repo.merged = []string{"main", "feature"}
		repo.deleteErr = map[string]error{"feature": &git.CommandError{Args: []string{"branch", "-d", "feature"}}}
		r := newRefresher(staticResolver{branch: "main"})

		_, err := r.Refresh(ctx, path, refresh.Normal)
		var cmdErr *git.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
	})
})

type fakeLister struct {
	entries []store.Entry
	err     error
}

func (l *fakeLister) List() ([]store.Entry, error) { return l.entries, l.err }

type fakeEngine struct {
	outcomes map[string]refresh.Outcome
	errs     map[string]error
	paths    []string
}

func (e *fakeEngine) Refresh(_ context.Context, path string, _ refresh.Verbosity) (refresh.Outcome, error) {
	e.paths = append(e.paths, path)
	if err, ok := e.errs[path]; ok {
		return refresh.Outcome{}, err
	}
	return e.outcomes[path], nil
}

func entryFor(name string) store.Entry {
	return store.Entry{
		LinkPath: "/work/" + name,
		RealPath: "/work/repo/github.com/kitsuyui/" + name,
		Info:     store.RepoInfo{Host: "github.com", Owner: "kitsuyui", Name: name},
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx    context.Context
		out    *bytes.Buffer
		engine *fakeEngine
	)

	BeforeEach(func() {
		ctx = context.Background()
		out = &bytes.Buffer{}
		engine = &fakeEngine{outcomes: map[string]refresh.Outcome{}}
	})

	It("prints a notice for an empty workspace", func() {
		orch := refresh.NewOrchestrator(&fakeLister{}, engine, out, nil)

		Expect(orch.RefreshAll(ctx, refresh.Normal)).To(Succeed())
		Expect(out.String()).To(Equal("No repositories found\n"))
		Expect(engine.paths).To(BeEmpty())
	})

	It("propagates discovery failures", func() {
		orch := refresh.NewOrchestrator(&fakeLister{err: errors.New("read workspace dir: boom")}, engine, out, nil)

		err := orch.RefreshAll(ctx, refresh.Normal)
		Expect(err).To(MatchError(ContainSubstring("read workspace dir")))
		Expect(out.String()).To(BeEmpty())
	})

	It("reports broken entries and keeps going", func() {
		lister := &fakeLister{entries: []store.Entry{
			{LinkPath: "/work/dangling", Err: errors.New("resolve /work/dangling: no such file")},
			entryFor("mure"),
		}}
		engine.outcomes[entryFor("mure").RealPath] = refresh.Outcome{Transcript: []string{"Already up to date"}}
		orch := refresh.NewOrchestrator(lister, engine, out, nil)

		Expect(orch.RefreshAll(ctx, refresh.Normal)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("resolve /work/dangling: no such file"))
		Expect(out.String()).To(ContainSubstring("> Refreshing mure"))
		Expect(out.String()).To(ContainSubstring("Already up to date"))
	})

	It("isolates one repository's failure from the rest", func() {
		lister := &fakeLister{entries: []store.Entry{entryFor("broken"), entryFor("mure")}}
		engine.errs = map[string]error{entryFor("broken").RealPath: errors.New("fetch failed")}
		engine.outcomes[entryFor("mure").RealPath] = refresh.Outcome{Transcript: []string{"Already up to date"}}
		orch := refresh.NewOrchestrator(lister, engine, out, nil)

		Expect(orch.RefreshAll(ctx, refresh.Normal)).To(Succeed())
		Expect(engine.paths).To(HaveLen(2))
		Expect(out.String()).To(ContainSubstring("fetch failed"))
		Expect(out.String()).To(ContainSubstring("> Refreshing mure"))
	})

	It("renders each skip state with its own message", func() {
		lister := &fakeLister{entries: []store.Entry{entryFor("alpha"), entryFor("beta"), entryFor("gamma")}}
		engine.outcomes[entryFor("alpha").RealPath] = refresh.Outcome{Skip: refresh.SkipNotARepository}
		engine.outcomes[entryFor("beta").RealPath] = refresh.Outcome{Skip: refresh.SkipEmptyRepository}
		engine.outcomes[entryFor("gamma").RealPath] = refresh.Outcome{Skip: refresh.SkipNoRemote}
		orch := refresh.NewOrchestrator(lister, engine, out, nil)

		Expect(orch.RefreshAll(ctx, refresh.Normal)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("alpha is not a git repository\n"))
		Expect(out.String()).To(ContainSubstring("beta has no commits\n"))
		Expect(out.String()).To(ContainSubstring("gamma has no remote\n"))
	})

	It("prints the transcript after the progress line", func() {
		lister := &fakeLister{entries: []store.Entry{entryFor("mure")}}
		engine.outcomes[entryFor("mure").RealPath] = refresh.Outcome{
			Transcript: []string{"Switched to main", "Fast-forwarded"},
		}
		orch := refresh.NewOrchestrator(lister, engine, out, nil)

		Expect(orch.RefreshAll(ctx, refresh.Normal)).To(Succeed())
		Expect(out.String()).To(Equal("> Refreshing mure\nSwitched to main\nFast-forwarded\n"))
	})

	It("prints an empty transcript as a blank line", func() {
		lister := &fakeLister{entries: []store.Entry{entryFor("mure")}}
		engine.outcomes[entryFor("mure").RealPath] = refresh.Outcome{}
		orch := refresh.NewOrchestrator(lister, engine, out, nil)

		Expect(orch.RefreshAll(ctx, refresh.Normal)).To(Succeed())
		Expect(out.String()).To(Equal("> Refreshing mure\n\n"))
	})

	It("announces a switch by repository name when flagged", func() {
		lister := &fakeLister{entries: []store.Entry{entryFor("mure")}}
		engine.outcomes[entryFor("mure").RealPath] = refresh.Outcome{
			SwitchedToDefault: true,
			Transcript:        []string{"Fast-forwarded"},
		}
		orch := refresh.NewOrchestrator(lister, engine, out, nil)

		Expect(orch.RefreshAll(ctx, refresh.Normal)).To(Succeed())
		Expect(out.String()).To(Equal("> Refreshing mure\nSwitched to mure\nFast-forwarded\n"))
	})
})

var _ = Describe("VerbosityFromFlags", func() {
	It("prefers quiet over verbose", func() {
		Expect(refresh.VerbosityFromFlags(true, true)).To(Equal(refresh.Quiet))
		Expect(refresh.VerbosityFromFlags(true, false)).To(Equal(refresh.Quiet))
		Expect(refresh.VerbosityFromFlags(false, true)).To(Equal(refresh.Verbose))
		Expect(refresh.VerbosityFromFlags(false, false)).To(Equal(refresh.Normal))
	})
})
