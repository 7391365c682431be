package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// BOOTSTRAPD_LISTEN_ADDR.
const EnvPrefix = "BOOTSTRAPD"

type Config struct {
	// ListenAddr is the HTTP API bind address.
	ListenAddr string `mapstructure:"listen_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// Repository prefixes committed stage image tags.
	Repository string `mapstructure:"repository"`

	// MaxConcurrentJobs bounds simultaneous bootstrap sequences.
	MaxConcurrentJobs int `mapstructure:"max_concurrent_jobs"`

	// SlotWaitTimeout is how long a queued job waits for a slot.
	SlotWaitTimeout time.Duration `mapstructure:"slot_wait_timeout"`

	// IdleDetachTimeout terminates a job after its last watcher leaves.
	IdleDetachTimeout time.Duration `mapstructure:"idle_detach_timeout"`

	// RunMemoryBytes / RunNanoCPUs limit the entrypoint container.
	// Zero means unlimited.
	RunMemoryBytes int64 `mapstructure:"run_memory_bytes"`
	RunNanoCPUs    int64 `mapstructure:"run_nano_cpus"`
}

// Load reads configuration from an optional file plus BOOTSTRAPD_*
// environment variables, over built-in defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("repository", "bootstrap-engine")
	v.SetDefault("max_concurrent_jobs", 4)
	v.SetDefault("slot_wait_timeout", 2*time.Minute)
	v.SetDefault("idle_detach_timeout", time.Minute)
	v.SetDefault("run_memory_bytes", 0)
	v.SetDefault("run_nano_cpus", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
