package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Storage StorageConfig
	History HistoryConfig
	Calc    CalcConfig
	UI      UIConfig
	Log     LogConfig
}

// StorageConfig selects and locates the durable history backend.
type StorageConfig struct {
	Backend string // sqlite | file | memory
	Path    string // sqlite database file
	Dir     string // file backend directory
	Key     string
}

// HistoryConfig holds history store settings.
type HistoryConfig struct {
	Capacity      int
	WritePolicy   string `mapstructure:"write_policy"` // warn | retry | fail
	RetryAttempts int    `mapstructure:"retry_attempts"`
}

// CalcConfig holds calculator engine settings.
type CalcConfig struct {
	AngleUnit         string `mapstructure:"angle_unit"` // rad | deg
	Precision         int
	IntegralMethod    string `mapstructure:"integral_method"`
	IntegralIntervals int    `mapstructure:"integral_intervals"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DefaultTab string `mapstructure:"default_tab"`
	Timezone   string
}

// LogConfig holds logging settings. Path "-" discards log output.
type LogConfig struct {
	Level string
	Path  string
}

const (
	envPrefix  = "CALCDECK"
	envConfig  = "CALCDECK_CONFIG"
	appDirName = "calcdeck"
)

// Load reads configuration from file and env. Env var overrides use prefix CALCDECK_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv(envConfig)
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", appDirName))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing config file is fine; a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Validate()
	return c, nil
}

// Default returns the configuration used when no file or env overrides exist.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	c.Validate()
	return c
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(homeDir(), ".local", "share", appDirName)
	stateDir := filepath.Join(homeDir(), ".local", "state", appDirName)

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", filepath.Join(dataDir, "calcdeck.db"))
	v.SetDefault("storage.dir", filepath.Join(dataDir, "store"))
	v.SetDefault("storage.key", "calculatorHistory")
	v.SetDefault("history.capacity", 50)
	v.SetDefault("history.write_policy", "warn")
	v.SetDefault("history.retry_attempts", 3)
	v.SetDefault("calc.angle_unit", "rad")
	v.SetDefault("calc.precision", 10)
	v.SetDefault("calc.integral_method", "simpson")
	v.SetDefault("calc.integral_intervals", 1000)
	v.SetDefault("ui.default_tab", "simple")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(stateDir, "calcdeck.log"))
}

// Validate replaces out-of-range values with defaults.
func (c *Config) Validate() {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case "sqlite", "file", "memory":
		c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	default:
		c.Storage.Backend = "sqlite"
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		c.Storage.Key = "calculatorHistory"
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = 50
	}
	switch strings.ToLower(c.History.WritePolicy) {
	case "warn", "retry", "fail":
		c.History.WritePolicy = strings.ToLower(c.History.WritePolicy)
	default:
		c.History.WritePolicy = "warn"
	}
	if c.History.RetryAttempts <= 0 {
		c.History.RetryAttempts = 3
	}
	switch strings.ToLower(c.Calc.AngleUnit) {
	case "rad", "deg":
		c.Calc.AngleUnit = strings.ToLower(c.Calc.AngleUnit)
	default:
		c.Calc.AngleUnit = "rad"
	}
	if c.Calc.Precision <= 0 || c.Calc.Precision > 15 {
		c.Calc.Precision = 10
	}
	if c.Calc.IntegralMethod == "" {
		c.Calc.IntegralMethod = "simpson"
	}
	if c.Calc.IntegralIntervals < 2 {
		c.Calc.IntegralIntervals = 1000
	}
	switch strings.ToLower(c.UI.DefaultTab) {
	case "simple", "integral":
		c.UI.DefaultTab = strings.ToLower(c.UI.DefaultTab)
	default:
		c.UI.DefaultTab = "simple"
	}
	if c.UI.Timezone == "" {
		c.UI.Timezone = "Local"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Path is the config file Save writes: CALCDECK_CONFIG when set, otherwise
// ~/.config/calcdeck/config.toml.
func Path() string {
	if p := os.Getenv(envConfig); p != "" {
		return p
	}
	return filepath.Join(homeDir(), ".config", appDirName, "config.toml")
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.dir", cfg.Storage.Dir)
	v.Set("storage.key", cfg.Storage.Key)
	v.Set("history.capacity", cfg.History.Capacity)
	v.Set("history.write_policy", cfg.History.WritePolicy)
	v.Set("history.retry_attempts", cfg.History.RetryAttempts)
	v.Set("calc.angle_unit", cfg.Calc.AngleUnit)
	v.Set("calc.precision", cfg.Calc.Precision)
	v.Set("calc.integral_method", cfg.Calc.IntegralMethod)
	v.Set("calc.integral_intervals", cfg.Calc.IntegralIntervals)
	v.Set("ui.default_tab", cfg.UI.DefaultTab)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
