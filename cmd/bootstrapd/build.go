package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bootstrap-engine/internal/bootstrap"
	"bootstrap-engine/internal/builder"
)

var (
	buildRuntime string
	buildSource  string
	buildEnv     []string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Bootstrap a source tree into an image without running it",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := parseEnv(buildEnv)
		if err != nil {
			return err
		}

		b, err := builder.NewDockerBuilder(builder.Options{
			Repository: cfg.Repository,
		})
		if err != nil {
			return err
		}
		eng := bootstrap.New(b, bootstrap.Options{MaxConcurrentJobs: 1})

		imageRef, err := eng.Build(cmd.Context(), bootstrap.Request{
			Runtime:   buildRuntime,
			SourceDir: buildSource,
			Env:       env,
		})
		if err != nil {
			return err
		}

		fmt.Println(imageRef)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildRuntime, "runtime", "python", "runtime to bootstrap with")
	buildCmd.Flags().StringVar(&buildSource, "source", ".", "application source tree")
	buildCmd.Flags().StringArrayVar(&buildEnv, "env", nil, "extra environment, KEY=VALUE (repeatable)")
	rootCmd.AddCommand(buildCmd)
}
