package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manwar/multisect/internal/multisect"
)

func newRunCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Multisect every target to its minimal transition set",
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

			d, err := buildDriver(cmd.Context(), opts, log)
			if err != nil {
				return err
			}

			traceSessionID := ""
			if opts.Trace {
				traceSessionID = sessionID
			}
			reports, err := runAndReport(cmd.Context(), d, func(ctx context.Context, d *multisect.Driver) error {
				return d.MultisectAllTargets(ctx)
			}, traceSessionID, opts.OutputDir)
			if err != nil {
				return err
			}

			PrintReports(cmd.OutOrStdout(), reports)
			return nil
		},
	}
}
