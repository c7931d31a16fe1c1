// Package gitlog implements the commit-range enumerator: given a
// repository and two endpoint identifiers, it returns the ordered list of
// commit identifiers between them, oldest first. Ancestry semantics belong
// entirely to git itself; this package only shells out and parses
// `git rev-list` output.
//
// Grounded on an os/exec invocation pattern, narrowed to a single
// read-only git subcommand.
package gitlog

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/manwar/multisect/internal/core"
)

// Enumerate returns the ordered commit range [first..last], oldest first,
// by ancestry in repoPath.
func Enumerate(ctx context.Context, repoPath, first, last string) (core.CommitRange, error) {
	if first == "" || last == "" {
		return nil, core.ConfigurationError("both first and last endpoints are required")
	}

	firstID, err := resolve(ctx, repoPath, first)
	if err != nil {
		return nil, err
	}

	// rev-list --reverse prints oldest-first and excludes the lower bound
	// by default; first..last walks every commit strictly after first up
	// through last, and first itself is prepended below.
	out, err := run(ctx, repoPath, "rev-list", "--reverse", fmt.Sprintf("%s..%s", first, last))
	if err != nil {
		return nil, core.ConfigurationError("git rev-list %s..%s in %s: %v", first, last, repoPath, err)
	}

	ids := splitLines(out)
	commits := make(core.CommitRange, 0, len(ids)+1)
	commits = append(commits, core.CommitId(firstID))
	for _, id := range ids {
		commits = append(commits, core.CommitId(id))
	}

	if len(commits) < 2 {
		return nil, core.ConfigurationError("commit range between %s and %s is empty or ambiguous", first, last)
	}
	return commits, nil
}

// EnumerateBefore returns the range ending at last, starting lastBefore
// commits before it — the alternative (last_before, last) endpoint form.
func EnumerateBefore(ctx context.Context, repoPath string, lastBefore int, last string) (core.CommitRange, error) {
	if lastBefore <= 0 {
		return nil, core.ConfigurationError("last_before must be positive, got %d", lastBefore)
	}
	out, err := run(ctx, repoPath, "log", "--reverse", "--format=%H", fmt.Sprintf("-n%d", lastBefore+1), last)
	if err != nil {
		return nil, core.ConfigurationError("git log --reverse -n%d %s in %s: %v", lastBefore+1, last, repoPath, err)
	}
	ids := splitLines(out)
	if len(ids) < 2 {
		return nil, core.ConfigurationError("fewer than %d commits reachable from %s", lastBefore+1, last)
	}

	commits := make(core.CommitRange, len(ids))
	for i, id := range ids {
		commits[i] = core.CommitId(id)
	}
	return commits, nil
}

func resolve(ctx context.Context, repoPath, ref string) (string, error) {
	out, err := run(ctx, repoPath, "rev-parse", "--verify", ref)
	if err != nil {
		return "", core.ConfigurationError("resolving ref %q in %s: %v", ref, repoPath, err)
	}
	return strings.TrimSpace(out), nil
}

func run(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%v: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
