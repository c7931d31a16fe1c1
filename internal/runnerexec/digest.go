// Package runnerexec is the concrete, os/exec-backed adapter for the
// Runner port: given a commit, it checks out source, configures, builds,
// runs each target, normalizes the capture, and returns one core.Result
// per target.
//
// Grounded on an environment-allowlist os/exec runner and a
// length-prefixed sha256 hasher over ordered fields — retargeted from
// task-cache-key hashing to content digests of normalized command output.
package runnerexec

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/manwar/multisect/internal/core"
)

// digestContent computes a fixed-width hex digest over the observed
// behavior alone (Probe passes the normalized output followed by the
// target's exit code): the commit and target identity must NOT enter the
// hash. Two different
// commits that produce byte-identical normalized output after the target
// runs are exactly the case the multisection engine needs to recognize as
// the same equivalence class.
func digestContent(normalized []byte) core.Digest {
	sum := sha256.Sum256(normalized)
	return core.Digest(hex.EncodeToString(sum[:]))
}
