package cli

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// watchAndSweep runs once immediately, then re-runs every time cfgFile
// changes on disk, using viper's own fsnotify-backed WatchConfig for config
// hot-reload. It blocks until the process is interrupted.
func watchAndSweep(cmd *cobra.Command, v *viper.Viper, runOnce func() error) error {
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	if err := runOnce(); err != nil {
		return err
	}

	changed := make(chan struct{}, 1)
	v.OnConfigChange(func(_ fsnotify.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	v.WatchConfig()

	for range changed {
		if err := runOnce(); err != nil {
			cmd.PrintErrln(err)
		}
	}
	return nil
}
