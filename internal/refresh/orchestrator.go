package refresh

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kitsuyui/mure/internal/store"
)

// Lister enumerates the managed repositories of a workspace. *store.Store
// implements it.
type Lister interface {
	List() ([]store.Entry, error)
}

// Engine runs the refresh state machine for one repository path. *Refresher
// implements it.
type Engine interface {
	Refresh(ctx context.Context, path string, verbosity Verbosity) (Outcome, error)
}

// Orchestrator refreshes every managed repository in sequence, reporting
// progress and outcomes as text. One repository's failure never stops the
// others.
type Orchestrator struct {
	repos  Lister
	engine Engine
	out    io.Writer
	log    *slog.Logger
}

// NewOrchestrator wires an Orchestrator. The logger may be nil.
func NewOrchestrator(repos Lister, engine Engine, out io.Writer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		repos:  repos,
		engine: engine,
		out:    out,
		log:    log,
	}
}

// RefreshAll discovers the managed repositories and refreshes each one,
// strictly sequentially. Discovery failure is the only error that propagates;
// everything per-repository is reported as text and absorbed.
func (o *Orchestrator) RefreshAll(ctx context.Context, verbosity Verbosity) error {
	entries, err := o.repos.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(o.out, "No repositories found")
		return nil
	}

	for _, entry := range entries {
		if entry.Err != nil {
			fmt.Fprintln(o.out, entry.Err)
			continue
		}

		name := entry.Info.Name
		fmt.Fprintf(o.out, "> Refreshing %s\n", name)
		if o.log != nil {
			o.log.Debug("refreshing", "name", name, "path", entry.RealPath)
		}

		outcome, err := o.engine.Refresh(ctx, entry.RealPath, verbosity)
		if err != nil {
			fmt.Fprintln(o.out, err)
			if o.log != nil {
				o.log.Debug("refresh failed", "name", name, "error", err)
			}
			continue
		}
		o.report(name, outcome)
	}
	return nil
}

func (o *Orchestrator) report(name string, outcome Outcome) {
	switch outcome.Skip {
	case SkipNotARepository:
		fmt.Fprintf(o.out, "%s is not a git repository\n", name)
	case SkipEmptyRepository:
		fmt.Fprintf(o.out, "%s has no commits\n", name)
	case SkipNoRemote:
		fmt.Fprintf(o.out, "%s has no remote\n", name)
	default:
		if outcome.SwitchedToDefault {
			fmt.Fprintf(o.out, "Switched to %s\n", name)
		}
		fmt.Fprintln(o.out, outcome.Message())
	}
}
