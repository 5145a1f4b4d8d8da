package git

import (
	"errors"
	"fmt"
	"strings"
)

// RawResult captures one completed git invocation exactly as the process
// reported it. A non-zero exit code is not an error at this layer; the caller
// decides which exits are meaningful for the command it ran.
type RawResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports whether the command exited zero.
func (r RawResult) Succeeded() bool {
	return r.ExitCode == 0
}

// Interpreted pairs a raw result with the domain value derived from it, so the
// machine-usable decision and the human-facing transcript never drift apart.
type Interpreted[T any] struct {
	Raw   RawResult
	Value T
}

// Interpret collapses a raw result into an empty interpretation, treating any
// non-zero exit as a CommandError. For call sites where failure is
// unconditionally fatal.
func Interpret(raw RawResult) (Interpreted[struct{}], error) {
	if !raw.Succeeded() {
		return Interpreted[struct{}]{}, &CommandError{Raw: raw}
	}
	return Interpreted[struct{}]{Raw: raw}, nil
}

// ErrNoWorkingDirectory reports a repository whose working tree is missing or
// inaccessible. Bare repositories and removed directories end up here.
var ErrNoWorkingDirectory = errors.New("git: no working directory")

// CommandError reports a git command that ran to completion and exited
// non-zero. This is often a meaningful domain outcome (a branch that does not
// exist, a pull that cannot fast-forward) rather than a bug; callers classify
// it per operation.
type CommandError struct {
	Args []string
	Raw  RawResult
}

func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Args) == 0 {
		return fmt.Sprintf("git: exit status %d\n%s", e.Raw.ExitCode, e.Raw.Stderr)
	}
	return fmt.Sprintf("git %s: exit status %d\n%s", strings.Join(e.Args, " "), e.Raw.ExitCode, e.Raw.Stderr)
}

// ExecError reports a git command that could not be executed at all, commonly
// because the git binary is missing from PATH. Unlike CommandError this always
// indicates a broken environment, never a domain outcome.
type ExecError struct {
	Args []string
	Err  error
}

func (e *ExecError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("execute git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *ExecError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
