package git

import "strings"

// FastForwardOutcome classifies what a fast-forward-only pull did.
type FastForwardOutcome string

const (
	// AlreadyUpToDate means the local branch already matched the remote tip.
	AlreadyUpToDate FastForwardOutcome = "already_up_to_date"
	// FastForwarded means the local branch advanced to the remote tip.
	FastForwarded FastForwardOutcome = "fast_forwarded"
	// Aborted means the pull could not fast-forward, typically because local
	// and remote have diverged. This is an expected outcome callers react to,
	// not an error.
	Aborted FastForwardOutcome = "aborted"
)

// classifyFastForward derives the pull outcome from stdout. git signals the
// distinction only through phrasing, not exit codes, so the fragile text
// matching is isolated here where it can be tested without spawning anything.
func classifyFastForward(stdout string) FastForwardOutcome {
	switch {
	case strings.Contains(stdout, "Already up to date."):
		return AlreadyUpToDate
	case strings.Contains(stdout, "Fast-forward"):
		return FastForwarded
	default:
		return Aborted
	}
}

// splitLines breaks command output into lines, dropping empty entries such as
// the trailing newline artifact.
func splitLines(s string) []string {
	parts := strings.Split(s, "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			lines = append(lines, part)
		}
	}
	return lines
}
