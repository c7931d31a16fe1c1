// Package normalize strips non-content noise from a probed target's raw
// capture so that the same underlying behavior yields the same digest on
// repeat runs — normalizing outputs to remove non-content noise so that
// digests are stable.
//
// Grounded on a regex-replacement pattern list for nondeterminism scrubbing,
// retargeted from build-cache nondeterminism (timestamps, pids, addresses)
// to the same concerns in test/build output.
package normalize

import (
	"bytes"
	"regexp"
)

// Normalizer rewrites a raw capture into a stable, content-only form.
type Normalizer interface {
	Normalize(content []byte) []byte
}

type pattern struct {
	regex       *regexp.Regexp
	replacement []byte
}

// Default strips timestamps, durations, pids, and memory addresses — the
// usual sources of byte-for-byte drift between two runs of an otherwise
// identical test or build. Normalization rules are the runner's concern to
// document, since they're specific to what a given target actually emits.
type Default struct {
	patterns []pattern
}

// NewDefault builds a Default normalizer with the standard pattern set.
func NewDefault() *Default {
	return &Default{
		patterns: []pattern{
			{regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?`), []byte("<TIMESTAMP>")},
			{regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}\s+\d{2}:\d{2}:\d{2}(\.\d+)?`), []byte("<TIMESTAMP>")},
			{regexp.MustCompile(`\b1[0-9]{9,12}\b`), []byte("<UNIX_TS>")},
			{regexp.MustCompile(`\b\d+(\.\d+)?\s*(ms|s|seconds?|minutes?|hours?)\b`), []byte("<DURATION>")},
			{regexp.MustCompile(`\b[Pp][Ii][Dd][:\s]*\d+\b`), []byte("pid <PID>")},
			{regexp.MustCompile(`0x[0-9a-fA-F]{8,16}`), []byte("<ADDR>")},
			{regexp.MustCompile(`(?i)\b(?:tmp|temp)[a-zA-Z0-9._-]*\d{4,}\b`), []byte("<TMPNAME>")},
		},
	}
}

// Normalize applies every pattern in order.
func (n *Default) Normalize(content []byte) []byte {
	result := content
	for _, p := range n.patterns {
		result = p.regex.ReplaceAll(result, p.replacement)
	}
	return result
}

// Raw preserves content unchanged; useful when a target's output is
// already digest-stable (e.g. a checksum line) and stripping would hide a
// real regression instead of noise.
type Raw struct{}

// Normalize returns content unchanged.
func (Raw) Normalize(content []byte) []byte { return content }

// CRLF normalizes line endings to LF before delegating to Inner, so a
// runner that checks out on different filesystems doesn't see spurious
// transitions from line-ending drift alone.
type CRLF struct {
	Inner Normalizer
}

// Normalize converts CRLF to LF and applies Inner if set.
func (c CRLF) Normalize(content []byte) []byte {
	result := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if c.Inner != nil {
		result = c.Inner.Normalize(result)
	}
	return result
}
