package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/manwar/multisect/internal/config"
	"github.com/manwar/multisect/internal/core"
	"github.com/manwar/multisect/internal/gitlog"
	"github.com/manwar/multisect/internal/multisect"
	"github.com/manwar/multisect/internal/normalize"
	"github.com/manwar/multisect/internal/report"
	"github.com/manwar/multisect/internal/runnerexec"
)

// buildDriver wires the commit enumerator, runner adapter, and multisect
// driver from opts: enumerator -> driver(runner, cache, validator). Shared
// by the run and sweep subcommands so both exercise an identical pipeline
// construction path.
func buildDriver(ctx context.Context, opts config.Options, log *slog.Logger) (*multisect.Driver, error) {
	targets, err := config.ParseTargets(opts.Targets)
	if err != nil {
		return nil, err
	}

	var commits core.CommitRange
	if opts.First != "" {
		commits, err = gitlog.Enumerate(ctx, opts.Repository, opts.First, opts.Last)
	} else {
		commits, err = gitlog.EnumerateBefore(ctx, opts.Repository, opts.LastBefore, opts.Last)
	}
	if err != nil {
		return nil, err
	}

	runnerCfg := runnerexec.Config{
		Repository:       opts.Repository,
		Branch:           opts.Branch,
		Workdir:          opts.Workdir,
		OutputDir:        opts.OutputDir,
		ShortLen:         opts.Short,
		ConfigureCommand: opts.ConfigureCommand,
		MakeCommand:      opts.MakeCommand,
	}
	runner := runnerexec.New(runnerCfg, targets, normalize.NewDefault(), log)

	return multisect.New(commits, targets, runner)
}

// runAndReport drives d to completion with drive, then inspects and returns
// every target's transitions. If sessionID is non-empty, tracing is enabled
// on d before driving and the resulting canonical trace is written under
// outputDir once the drive completes.
func runAndReport(ctx context.Context, d *multisect.Driver, drive func(context.Context, *multisect.Driver) error, sessionID, outputDir string) (map[string]report.TargetReport, error) {
	if sessionID != "" {
		d.EnableTrace(sessionID)
	}
	if err := d.Prepare(ctx); err != nil {
		return nil, err
	}
	if err := drive(ctx, d); err != nil {
		return nil, err
	}
	if sessionID != "" {
		if err := writeTrace(d.Trace(), outputDir); err != nil {
			return nil, err
		}
	}
	return d.InspectTransitions()
}

// writeTrace marshals trace's canonical JSON and writes it under outputDir,
// named by a prefix of the trace's own hash. The hash covers the trace's
// session id, so every session writes a file of its own.
func writeTrace(trace interface {
	CanonicalJSON() ([]byte, error)
	Hash() (string, error)
}, outputDir string) error {
	data, err := trace.CanonicalJSON()
	if err != nil {
		return err
	}
	hash, err := trace.Hash()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(outputDir, "trace-"+hash[:12]+".json")
	return os.WriteFile(path, data, 0o644)
}
