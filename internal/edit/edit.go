// Package edit opens a managed repository in the user's preferred editor.
package edit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kitsuyui/mure/internal/git"
)

// ErrNoEditor means no editor could be determined from any source.
var ErrNoEditor = errors.New("no editor found")

// Resolve picks the editor command by priority: the configured editor, the
// repository's own git config, then $EDITOR and $VISUAL. Empty candidates are
// skipped.
func Resolve(ctx context.Context, configured, repoDir string, runner *git.Runner) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if editor := editorFromGitConfig(ctx, repoDir, runner); editor != "" {
		return editor, nil
	}
	for _, key := range []string{"EDITOR", "VISUAL"} {
		if editor := os.Getenv(key); editor != "" {
			return editor, nil
		}
	}
	return "", ErrNoEditor
}

func editorFromGitConfig(ctx context.Context, repoDir string, runner *git.Runner) string {
	repo, err := git.OpenWith(repoDir, runner)
	if err != nil {
		return ""
	}
	raw, err := repo.Run(ctx, "config", "core.editor")
	if err != nil || !raw.Succeeded() {
		return ""
	}
	return strings.TrimSpace(raw.Stdout)
}

// Open launches the editor on path. The command may carry its own arguments;
// it is split on whitespace and the path is appended last. The editor
// inherits the terminal.
func Open(ctx context.Context, editor, path string) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return ErrNoEditor
	}

	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("open editor: %w", err)
	}
	return nil
}
