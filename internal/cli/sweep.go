package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manwar/multisect/internal/multisect"
)

func newSweepCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Probe every commit in the range, bypassing minimal-probe search",
		Long: `sweep visits every commit in the configured range in order — an
additive "visit every commit" mode useful for diagnosis workflows that
intentionally forgo the minimal-probing guarantee that run provides.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(v)
			if err != nil {
				return err
			}
			log := newLogger(opts.Verbose)

			sessionID, err := writeSessionManifest(opts)
			if err != nil {
				return err
			}
			log.Info("session started", "session_id", sessionID)

			runOnce := func() error {
				// Reload on every run so a --watch re-run sees the edited config.
				opts, err := loadOptions(v)
				if err != nil {
					return err
				}
				d, err := buildDriver(cmd.Context(), opts, log)
				if err != nil {
					return err
				}
				traceSessionID := ""
				if opts.Trace {
					traceSessionID = sessionID
				}
				reports, err := runAndReport(cmd.Context(), d, func(ctx context.Context, d *multisect.Driver) error {
					return d.SweepAll(ctx)
				}, traceSessionID, opts.OutputDir)
				if err != nil {
					return err
				}
				PrintReports(cmd.OutOrStdout(), reports)
				return nil
			}

			if watch, _ := cmd.Flags().GetBool("watch"); watch && cfgFile != "" {
				return watchAndSweep(cmd, v, runOnce)
			}
			return runOnce()
		},
	}
	cmd.Flags().Bool("watch", false, "re-run sweep whenever --config's file changes (requires --config)")
	return cmd
}
