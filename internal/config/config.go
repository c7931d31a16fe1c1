// Package config parses the configuration surface (first, last,
// last_before, short, targets, verbose, workdir, outputdir,
// configure_command, make_command, branch, repository) from cobra flags
// layered over an optional TOML config file via viper, and canonicalizes
// the result: workdir must resolve to an absolute path, and every other
// path-shaped value is resolved relative to it rather than the process's
// current working directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/manwar/multisect/internal/core"
)

// Options is the canonical, fully-resolved configuration for one multisect
// invocation. Only First/Last/LastBefore/Short/Targets are consumed by
// internal/multisect and internal/probecache; ConfigureCommand, MakeCommand,
// Branch, and Repository are forwarded opaquely to internal/runnerexec.
type Options struct {
	First      string   `mapstructure:"first"`
	Last       string   `mapstructure:"last"`
	LastBefore int      `mapstructure:"last_before"`
	Short      int      `mapstructure:"short"`
	Targets    []string `mapstructure:"targets"`
	Verbose    int      `mapstructure:"verbose"`
	Workdir    string   `mapstructure:"workdir"`
	OutputDir  string   `mapstructure:"outputdir"`

	ConfigureCommand string `mapstructure:"configure_command"`
	MakeCommand      string `mapstructure:"make_command"`

	Branch     string `mapstructure:"branch"`
	Repository string `mapstructure:"repository"`

	Trace           bool `mapstructure:"trace"`
	ParallelTargets int  `mapstructure:"parallel_targets"`
}

// defaults applies viper.SetDefault calls before Unmarshal, so an entirely
// flagless, fileless invocation still
// produces a usable Options (short commit ids, an outputdir under workdir).
func defaults(v *viper.Viper) {
	v.SetDefault("short", 12)
	v.SetDefault("outputdir", "multisect-out")
	v.SetDefault("verbose", 0)
	v.SetDefault("parallel_targets", 1)
}

// Load reads cfgFile (a TOML document, optional) into v, applies defaults,
// and layers any already-bound cobra flags (the caller is expected to have
// bound them with v.BindPFlag before Load) over it, then canonicalizes the
// result.
//
// Load never reads the process's environment or its current working
// directory except through the explicitly supplied Workdir value, keeping
// configuration resolution deterministic.
func Load(v *viper.Viper, cfgFile string) (Options, error) {
	defaults(v)

	if cfgFile != "" {
		data, err := os.ReadFile(cfgFile)
		if err != nil {
			return Options{}, core.ConfigurationError("reading config file %q: %v", cfgFile, err)
		}
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Options{}, core.ConfigurationError("parsing config file %q as TOML: %v", cfgFile, err)
		}
		if err := v.MergeConfigMap(raw); err != nil {
			return Options{}, core.ConfigurationError("merging config file %q: %v", cfgFile, err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, core.ConfigurationError("unmarshaling configuration: %v", err)
	}

	return canonicalize(opts)
}

// canonicalize applies the workdir-is-absolute invariant and resolves
// OutputDir relative to it, matching resolveUnderWorkDir's rules in the
// teacher's cli package.
func canonicalize(opts Options) (Options, error) {
	if opts.Workdir == "" {
		return Options{}, core.ConfigurationError("workdir is required")
	}
	workdir := filepath.Clean(opts.Workdir)
	if !filepath.IsAbs(workdir) {
		return Options{}, core.ConfigurationError("workdir must be an absolute path (got %q)", opts.Workdir)
	}
	opts.Workdir = workdir

	if opts.OutputDir == "" {
		return Options{}, core.ConfigurationError("outputdir is required")
	}
	opts.OutputDir = resolveUnder(workdir, opts.OutputDir)

	if opts.First == "" && opts.LastBefore <= 0 {
		return Options{}, core.ConfigurationError("either first or last_before must be set")
	}
	if opts.Last == "" {
		return Options{}, core.ConfigurationError("last is required")
	}
	if len(opts.Targets) == 0 {
		return Options{}, core.ConfigurationError("at least one target is required")
	}
	if opts.Short <= 0 {
		return Options{}, core.ConfigurationError("short must be positive, got %d", opts.Short)
	}
	if opts.ParallelTargets > 1 {
		return Options{}, core.ConfigurationError("parallel_targets must be 1, got %d: concurrent target probing is out of scope", opts.ParallelTargets)
	}

	return opts, nil
}

func resolveUnder(workdir, p string) string {
	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) {
		return clean
	}
	return filepath.Clean(filepath.Join(workdir, clean))
}

// ParseTargets converts the raw target path strings of Options.Targets into
// core.Target values, computing each one's stub and rejecting stub
// collisions the way internal/multisect.New itself would —
// surfaced earlier here so a misconfiguration is reported before any commit
// is enumerated.
func ParseTargets(paths []string) ([]core.Target, error) {
	targets := make([]core.Target, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		tg := core.NewTarget(p)
		if seen[tg.Stub] {
			return nil, core.ConfigurationError("duplicate target stub %q (from path %q)", tg.Stub, tg.Path)
		}
		seen[tg.Stub] = true
		targets = append(targets, tg)
	}
	return targets, nil
}
