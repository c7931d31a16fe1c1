package core

import "fmt"

// Kind is the stable discriminator for the error taxonomy.
type Kind int

const (
	// KindConfiguration covers missing directories, absent target files, and
	// ambiguous or empty commit ranges. Raised during Prepare().
	KindConfiguration Kind = iota

	// KindProbe covers a Runner port failure: non-zero exit, missing
	// artifact, or unreadable output. Fatal; aborts the session.
	KindProbe

	// KindInvariant signals a bug in the driver itself, not in user input:
	// the validator produced a result inconsistent with driver state, or a
	// target's probe counter exceeded N.
	KindInvariant

	// KindUsage covers calling multisect_* before Prepare(), or
	// InspectTransitions() before completion.
	KindUsage
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindProbe:
		return "ProbeError"
	case KindInvariant:
		return "InvariantViolation"
	case KindUsage:
		return "UsageError"
	default:
		return "UnknownError"
	}
}

// Error wraps a taxonomy Kind with a message and an optional underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &core.Error{Kind: core.KindX}) style checks: any
// *Error target with the same Kind matches.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func configf(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func probef(cause error, format string, args ...any) error {
	return &Error{Kind: KindProbe, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func invariantf(format string, args ...any) error {
	return &Error{Kind: KindInvariant, Msg: fmt.Sprintf(format, args...)}
}

func usagef(format string, args ...any) error {
	return &Error{Kind: KindUsage, Msg: fmt.Sprintf(format, args...)}
}

// ConfigurationError constructs a KindConfiguration error.
func ConfigurationError(format string, args ...any) error { return configf(format, args...) }

// ProbeError constructs a KindProbe error wrapping cause.
func ProbeError(cause error, format string, args ...any) error { return probef(cause, format, args...) }

// InvariantViolation constructs a KindInvariant error.
func InvariantViolation(format string, args ...any) error { return invariantf(format, args...) }

// UsageError constructs a KindUsage error.
func UsageError(format string, args ...any) error { return usagef(format, args...) }
