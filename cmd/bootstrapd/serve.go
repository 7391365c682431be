package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"bootstrap-engine/internal/api"
	"bootstrap-engine/internal/bootstrap"
	"bootstrap-engine/internal/builder"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bootstrap HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := builder.NewDockerBuilder(builder.Options{
			Repository:     cfg.Repository,
			RunMemoryBytes: cfg.RunMemoryBytes,
			RunNanoCPUs:    cfg.RunNanoCPUs,
		})
		if err != nil {
			return err
		}

		if err := b.PreloadBaseImages(context.Background()); err != nil {
			return err
		}

		eng := bootstrap.New(b, bootstrap.Options{
			MaxConcurrentJobs: cfg.MaxConcurrentJobs,
			SlotWaitTimeout:   cfg.SlotWaitTimeout,
			IdleDetachTimeout: cfg.IdleDetachTimeout,
		})

		if cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		r := api.NewRouter(eng)

		log.Info("bootstrap engine listening", "addr", cfg.ListenAddr)
		return r.Run(cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
