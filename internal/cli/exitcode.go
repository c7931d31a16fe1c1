package cli

import (
	"errors"

	"github.com/manwar/multisect/internal/core"
)

// ExitCode maps an error returned from the multisect pipeline to a semantic
// process exit code, keyed off the core.Error taxonomy. Errors outside that
// taxonomy (flag parsing, filesystem errors writing the manifest or trace)
// map to ExitInternalError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *core.Error
	if errors.As(err, &ce) {
		switch ce.Kind {
		case core.KindConfiguration:
			return ExitConfigError
		case core.KindProbe:
			return ExitProbeFailure
		case core.KindUsage:
			return ExitInvalidInvocation
		case core.KindInvariant:
			return ExitInternalError
		}
	}
	return ExitInternalError
}
