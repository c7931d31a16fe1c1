package runnerexec

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/manwar/multisect/internal/core"
	"github.com/manwar/multisect/internal/normalize"
)

// Config carries the runner-specific, core-opaque options (configure
// command, make command, branch, repository) forwarded opaquely to the
// runner, never interpreted by the core.
type Config struct {
	Repository       string
	Branch           string
	Workdir          string
	OutputDir        string
	ShortLen         int
	ConfigureCommand string
	MakeCommand      string
	// Env lists the variables visible to every command this runner shells
	// out to; the process environment otherwise starts empty.
	Env map[string]string
}

// GitExecRunner implements core.RunnerPort by checking out a commit in a
// shared working tree, optionally configuring and building it, then
// running each target's command and digesting its normalized output.
//
// Grounded on an environment-allowlist os/exec invocation pattern: process-
// group kill on cancellation, and captured stdout/stderr buffers — here run
// in sequence per probe (checkout, configure, make, one shell per target)
// instead of a single task run.
type GitExecRunner struct {
	cfg        Config
	targets    []core.Target
	normalizer normalize.Normalizer
	log        *slog.Logger
}

// New constructs a GitExecRunner. normalizer defaults to normalize.NewDefault
// when nil; logger defaults to slog.Default() when nil.
func New(cfg Config, targets []core.Target, normalizer normalize.Normalizer, log *slog.Logger) *GitExecRunner {
	if normalizer == nil {
		normalizer = normalize.NewDefault()
	}
	if log == nil {
		log = slog.Default()
	}
	return &GitExecRunner{cfg: cfg, targets: targets, normalizer: normalizer, log: log}
}

// Probe implements core.RunnerPort.
func (r *GitExecRunner) Probe(ctx context.Context, commit core.CommitId) ([]core.Result, error) {
	short := shortID(commit, r.cfg.ShortLen)
	r.log.Debug("probing commit", "commit", commit, "short_id", short)

	if err := r.checkout(ctx, commit); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", commit, err)
	}

	if r.cfg.ConfigureCommand != "" {
		if _, _, _, err := r.runControl(ctx, r.cfg.ConfigureCommand); err != nil {
			return nil, fmt.Errorf("configure at %s: %w", commit, err)
		}
	}
	if r.cfg.MakeCommand != "" {
		if _, _, _, err := r.runControl(ctx, r.cfg.MakeCommand); err != nil {
			return nil, fmt.Errorf("build at %s: %w", commit, err)
		}
	}

	results := make([]core.Result, 0, len(r.targets))
	for _, tg := range r.targets {
		// A target's own exit code is part of the observed behavior (a
		// test suite going from pass to fail IS the transition this
		// engine exists to find), so unlike checkout/configure/make, a
		// non-zero exit here is not a ProbeError — it folds into the
		// digest alongside stdout+stderr.
		stdout, stderr, exitCode, runErr := r.runTarget(ctx, tg.Path)
		if runErr != nil {
			return nil, fmt.Errorf("probing target %q at %s: %w", tg.Path, commit, runErr)
		}

		combined := append(append([]byte{}, stdout...), stderr...)
		normalized := r.normalizer.Normalize(combined)
		digestInput := append(append([]byte{}, normalized...), byte(exitCode))
		digest := digestContent(digestInput)

		outPath, err := r.writeArtifact(short, tg.Stub, exitCode, normalized)
		if err != nil {
			return nil, fmt.Errorf("writing artifact for %q at %s: %w", tg.Path, commit, err)
		}

		results = append(results, core.Result{
			CommitID:   commit,
			ShortID:    short,
			OutputPath: outPath,
			Digest:     digest,
			TargetStub: tg.Stub,
		})
	}

	return results, nil
}

func (r *GitExecRunner) checkout(ctx context.Context, commit core.CommitId) error {
	_, _, _, err := r.runControl(ctx, fmt.Sprintf("git checkout --force --quiet %s", commit))
	return err
}

// runControl shells out a command whose non-zero exit is itself fatal to
// the session (checkout, configure, build), surfaced as a ProbeError.
func (r *GitExecRunner) runControl(ctx context.Context, command string) (stdout, stderr []byte, exitCode int, err error) {
	stdout, stderr, exitCode, waitErr := r.exec(ctx, command)
	if waitErr != nil {
		return stdout, stderr, exitCode, waitErr
	}
	if exitCode != 0 {
		return stdout, stderr, exitCode, core.ProbeError(nil, "command %q exited %d", command, exitCode)
	}
	return stdout, stderr, exitCode, nil
}

// runTarget shells out a target command. Unlike runControl, a non-zero
// exit is not an error — it is observed behavior the digest must capture.
func (r *GitExecRunner) runTarget(ctx context.Context, command string) (stdout, stderr []byte, exitCode int, err error) {
	return r.exec(ctx, command)
}

// exec shells out with an allowlisted environment, starting from an empty
// environment and adding only cfg.Env, so a probe's determinism is never
// accidentally dependent on the operator's shell. It reports the exit code
// on its own terms; callers decide whether a non-zero code is fatal.
func (r *GitExecRunner) exec(ctx context.Context, command string) (stdout, stderr []byte, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.cfg.Workdir
	cmd.Env = buildIsolatedEnv(r.cfg.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Start(); err != nil {
		return nil, nil, 0, fmt.Errorf("starting %q: %w", command, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return nil, nil, 0, ctx.Err()
	case waitErr := <-done:
		if waitErr != nil {
			if exitErr, ok := waitErr.(*exec.ExitError); ok {
				return outBuf.Bytes(), errBuf.Bytes(), exitErr.ExitCode(), nil
			}
			return nil, nil, 0, fmt.Errorf("running %q: %w", command, waitErr)
		}
		return outBuf.Bytes(), errBuf.Bytes(), 0, nil
	}
}

func buildIsolatedEnv(env map[string]string) []string {
	if len(env) == 0 {
		return []string{}
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}

func shortID(commit core.CommitId, length int) core.ShortId {
	s := string(commit)
	if length <= 0 || length >= len(s) {
		return core.ShortId(s)
	}
	return core.ShortId(s[:length])
}

// writeArtifact deposits the probe's normalized capture under
// <outputdir>/<short_id>.<stub>.log, using a temp-file-then-rename pattern
// so a reader never observes a partially written artifact.
func (r *GitExecRunner) writeArtifact(short core.ShortId, stub string, exitCode int, normalized []byte) (string, error) {
	name := fmt.Sprintf("%s.%s.log", short, stub)
	path := filepath.Join(r.cfg.OutputDir, name)

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(r.cfg.OutputDir, name+".tmp.*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	header := "# exit_code=" + strconv.Itoa(exitCode) + "\n"
	if _, err := tmp.WriteString(header); err != nil {
		return "", err
	}
	if _, err := tmp.Write(normalized); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", err
	}
	committed = true
	return path, nil
}
