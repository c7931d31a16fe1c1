// Package cli assembles the multisect command-line tool: a cobra command
// tree that parses the configuration surface (via internal/config), wires
// the gitlog/runnerexec adapters into an internal/multisect.Driver, drives
// it to completion, and prints the resulting internal/report.TargetReport
// set to stdout.
//
// Grounded on a cobra root + viper OnInitialize config-loading pattern for
// the command tree, and on an exit-code taxonomy plus a library-style
// Execute entrypoint that a test can call without forking a process.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manwar/multisect/internal/config"
	"github.com/manwar/multisect/internal/obslog"
)

var cfgFile string

// NewRootCommand builds the multisect command tree. Execute builds a fresh
// tree on every call, so cmd/multisect/main.go and tests each get their own
// command instance.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "multisect",
		Short: "Locate every digest-transition boundary across a commit range",
		Long: `multisect probes a minimal subset of commits in a linear range to find
every point where a target's observed output changes, reusing probes across
targets via a shared cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML configuration file")
	root.PersistentFlags().String("first", "", "oldest commit of the range (inclusive)")
	root.PersistentFlags().String("last", "", "newest commit of the range")
	root.PersistentFlags().Int("last-before", 0, "alternative to --first: walk this many commits back from --last")
	root.PersistentFlags().Int("short", 12, "short commit id prefix length")
	root.PersistentFlags().StringSlice("targets", nil, "target command paths, one per probed observation")
	root.PersistentFlags().CountP("verbose", "v", "increase logging verbosity")
	root.PersistentFlags().String("workdir", "", "absolute working directory (repository checkout)")
	root.PersistentFlags().String("outputdir", "multisect-out", "artifact output directory, resolved under workdir")
	root.PersistentFlags().String("configure-command", "", "command run once per probe before the build")
	root.PersistentFlags().String("make-command", "", "build command run once per probe")
	root.PersistentFlags().String("branch", "", "branch name forwarded opaquely to the runner")
	root.PersistentFlags().String("repository", "", "repository path passed to the commit enumerator and runner")
	root.PersistentFlags().Bool("trace", false, "record a canonical probe trace and write it under outputdir")
	root.PersistentFlags().Int("parallel-targets", 1, "number of targets to probe concurrently (must be 1; reserved)")

	v := viper.New()
	flags := root.PersistentFlags()
	for key, flagName := range map[string]string{
		"first":             "first",
		"last":              "last",
		"last_before":       "last-before",
		"short":             "short",
		"targets":           "targets",
		"verbose":           "verbose",
		"workdir":           "workdir",
		"outputdir":         "outputdir",
		"configure_command": "configure-command",
		"make_command":      "make-command",
		"branch":            "branch",
		"repository":        "repository",
		"trace":             "trace",
		"parallel_targets":  "parallel-targets",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flagName))
	}
	v.SetDefault("repository", ".")

	root.AddCommand(newRunCommand(v), newSweepCommand(v))
	return root
}

// Execute runs the command tree against args and returns the process exit
// code to use, via an ExitCode-returning library entrypoint convention
// (kept as a function tests can call directly, not only via os.Exit in
// main).
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetContext(ctx)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitCode(err)
	}
	return ExitSuccess
}

func loadOptions(v *viper.Viper) (config.Options, error) {
	return config.Load(v, cfgFile)
}

func newLogger(verbosity int) *slog.Logger {
	return obslog.New(obslog.Config{Verbosity: verbosity})
}
