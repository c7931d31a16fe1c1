package cli

// Semantic exit codes: 0 success, and a distinct code per error taxonomy
// Kind so a calling script can distinguish "bad input" from "the tool
// itself is broken".
const (
	ExitSuccess           = 0
	ExitConfigError       = 1
	ExitProbeFailure      = 2
	ExitInvalidInvocation = 3
	ExitInternalError     = 4
)
