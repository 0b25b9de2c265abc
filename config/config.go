package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings are read by the engine and never written by it.
type Settings struct {
	AcceptNonChordBassStart bool    `mapstructure:"accept_non_chord_bass_start"`
	CacheRandomization      bool    `mapstructure:"cache_randomization"`
	SwingIntensity          float64 `mapstructure:"swing_intensity"`
}

type DynamoConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Region   string `mapstructure:"region"`
	Table    string `mapstructure:"table"`
}

// Config holds all runtime configuration. Values come from .basstile.yaml,
// BASSTILE_* env vars and CLI flags.
type Config struct {
	Settings `mapstructure:",squash"`

	// 0 seeds from the clock
	Seed int64 `mapstructure:"seed"`

	LogLevel    string       `mapstructure:"log_level"`
	LogFormat   string       `mapstructure:"log_format"`
	LibraryPath string       `mapstructure:"library_path"`
	Listen      string       `mapstructure:"listen"`
	Dynamo      DynamoConfig `mapstructure:"dynamo"`
}

func setDefaults() {
	viper.SetDefault("accept_non_chord_bass_start", false)
	viper.SetDefault("cache_randomization", true)
	viper.SetDefault("swing_intensity", 0.0)
	viper.SetDefault("seed", 0)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("library_path", "./out/library.dat")
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("dynamo.enabled", false)
	viper.SetDefault("dynamo.endpoint", "http://localhost:8000")
	viper.SetDefault("dynamo.region", "localhost")
	viper.SetDefault("dynamo.table", "basstile-fragments")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	setDefaults()
	viper.SetEnvPrefix("BASSTILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if cfg.SwingIntensity < 0 || cfg.SwingIntensity > 1 {
		return cfg, fmt.Errorf("swing_intensity must be within [0, 1], got %v", cfg.SwingIntensity)
	}
	return cfg, nil
}
