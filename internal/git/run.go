package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Runner invokes the system git binary, one synchronous process per call.
// There are no retries and no timeouts on this path; resilience belongs to the
// network API clients, not to local git invocation.
type Runner struct {
	// Git is the git binary to execute. Defaults to "git" when empty.
	Git string
}

func (r *Runner) gitBinary() string {
	if r == nil || r.Git == "" {
		return "git"
	}
	return r.Git
}

// Run executes git with args inside dir and returns the raw exit code, stdout,
// and stderr. A non-zero exit is returned as data, not as an error; the caller
// owns that judgment. The returned error covers only environment failures:
// ErrNoWorkingDirectory when dir is unusable, ExecError when the process could
// not run, or the context error on cancellation.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (RawResult, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return RawResult{}, fmt.Errorf("%s: %w", dir, ErrNoWorkingDirectory)
	}

	cmd := exec.CommandContext(ctx, r.gitBinary(), args...)
	cmd.Dir = dir
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return RawResult{}, &ExecError{Args: args, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case <-ctx.Done():
		terminateProcessGroup(cmd)
		<-done
		return RawResult{}, ctx.Err()
	case waitErr = <-done:
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return RawResult{}, &ExecError{Args: args, Err: waitErr}
		}
	}

	return RawResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
