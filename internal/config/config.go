package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the simulator and engine configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Targeting TargetingConfig `mapstructure:"targeting"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Replay    ReplayConfig    `mapstructure:"replay"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// EngineConfig configures every effect player.
type EngineConfig struct {
	MaxDepth      int `mapstructure:"max_depth"`
	QueueCapacity int `mapstructure:"queue_capacity"`
}

// TargetingConfig configures the targeting manager.
type TargetingConfig struct {
	// SelectionTimeout bounds a player choice. Zero waits until a choice is supplied.
	SelectionTimeout time.Duration `mapstructure:"selection_timeout"`
	// Seed makes random target selection reproducible. Zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`
}

// TracingConfig configures OTLP trace export. Tracing is off unless an endpoint is set.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"` // e.g. http://localhost:4318
	ServiceName string `mapstructure:"service_name"`
}

// ReplayConfig configures event replay recording.
type ReplayConfig struct {
	// Dir receives one <scene>.replay file per run. Empty disables recording.
	Dir string `mapstructure:"dir"`
}

// EnvPrefix prefixes every environment override, e.g. EFFECTS_ENGINE_MAX_DEPTH.
const EnvPrefix = "EFFECTS"

// Load reads configuration from path, then applies environment overrides. A missing
// file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("engine.max_depth", 64)
	v.SetDefault("engine.queue_capacity", 16)
	v.SetDefault("targeting.selection_timeout", time.Duration(0))
	v.SetDefault("targeting.seed", uint64(0))
	v.SetDefault("tracing.enabled", true)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "effect-simulator")
	v.SetDefault("replay.dir", "")
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.MaxDepth <= 0 {
		return fmt.Errorf("engine.max_depth must be positive, got %d", c.Engine.MaxDepth)
	}
	if c.Engine.QueueCapacity < 0 {
		return fmt.Errorf("engine.queue_capacity must not be negative, got %d", c.Engine.QueueCapacity)
	}
	if c.Targeting.SelectionTimeout < 0 {
		return fmt.Errorf("targeting.selection_timeout must not be negative, got %s", c.Targeting.SelectionTimeout)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
