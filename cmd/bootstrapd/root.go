package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"bootstrap-engine/internal/config"
)

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bootstrapd",
	Short: "Build and run application containers from a source tree",
	Long: `bootstrapd turns a source tree with a dependency manifest into a
runnable container image and invokes its entrypoint: acquire the base
image, install system prerequisites, install dependencies, materialize
the source, configure the environment, run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		lvl, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}
