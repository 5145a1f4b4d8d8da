package refresh

// Verbosity controls how much raw command output ends up in a refresh
// transcript. It never changes which steps run.
type Verbosity int

const (
	// Normal records one status line per notable step.
	Normal Verbosity = iota
	// Quiet suppresses pull status lines entirely.
	Quiet
	// Verbose additionally records the raw stderr and stdout of the pull.
	Verbose
)

// VerbosityFromFlags maps the usual pair of CLI switches onto a level.
// Quiet wins when both are set.
func VerbosityFromFlags(quiet, verbose bool) Verbosity {
	switch {
	case quiet:
		return Quiet
	case verbose:
		return Verbose
	default:
		return Normal
	}
}
