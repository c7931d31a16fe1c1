package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/manwar/multisect/internal/config"
)

// writeSessionManifest records a session id under opts.OutputDir before any
// probe runs, so two multisect invocations sharing the same output
// directory leave a distinguishable trail of which run wrote which
// artifacts. The manifest is advisory only; nothing in internal/multisect
// reads it.
func writeSessionManifest(opts config.Options) (sessionID string, err error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", err
	}
	sessionID = uuid.NewString()
	path := filepath.Join(opts.OutputDir, fmt.Sprintf("session-%s.manifest", sessionID))
	contents := fmt.Sprintf("session_id=%s\nfirst=%s\nlast=%s\ntargets=%v\n",
		sessionID, opts.First, opts.Last, opts.Targets)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return "", err
	}
	return sessionID, nil
}
