package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"bootstrap-engine/internal/bootstrap"
	"bootstrap-engine/internal/builder"
)

var (
	runRuntime string
	runSource  string
	runEnv     []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bootstrap a source tree and run its entrypoint",
	Long: `Builds the image for the given source tree, runs the entrypoint as
a foreground container, and exits with the entrypoint's exit code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := parseEnv(runEnv)
		if err != nil {
			return err
		}

		b, err := builder.NewDockerBuilder(builder.Options{
			Repository:     cfg.Repository,
			RunMemoryBytes: cfg.RunMemoryBytes,
			RunNanoCPUs:    cfg.RunNanoCPUs,
		})
		if err != nil {
			return err
		}
		eng := bootstrap.New(b, bootstrap.Options{MaxConcurrentJobs: 1})

		result, err := eng.Bootstrap(cmd.Context(), bootstrap.Request{
			Runtime:   runRuntime,
			SourceDir: runSource,
			Env:       env,
		}, os.Stdout, os.Stderr)
		if err != nil {
			return err
		}

		log.Debug("entrypoint exited", "exit_code", result.ExitCode, "duration_ms", result.DurationMs)
		if result.ExitCode != 0 {
			os.Exit(result.ExitCode)
		}
		return nil
	},
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := map[string]string{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid env pair %q, want KEY=VALUE", p)
		}
		env[k] = v
	}
	return env, nil
}

func init() {
	runCmd.Flags().StringVar(&runRuntime, "runtime", "python", "runtime to bootstrap with")
	runCmd.Flags().StringVar(&runSource, "source", ".", "application source tree")
	runCmd.Flags().StringArrayVar(&runEnv, "env", nil, "extra environment, KEY=VALUE (repeatable)")
	rootCmd.AddCommand(runCmd)
}
