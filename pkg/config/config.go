// Package config loads argspec settings from an optional YAML file and
// ARGSPEC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "argspec"
	// ConfigFileName is the settings file looked up when none is given.
	ConfigFileName = "argspec.yaml"
	// EnvPrefix prefixes environment overrides, e.g. ARGSPEC_LOG_LEVEL.
	EnvPrefix = "ARGSPEC"
)

// Config holds every setting.
type Config struct {
	Log      LogConfig      `mapstructure:"log"      yaml:"log"`
	Validate ValidateConfig `mapstructure:"validate" yaml:"validate"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ValidateConfig configures validation runs.
type ValidateConfig struct {
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
	Format      string `mapstructure:"format"      yaml:"format"`
}

// MetricsConfig configures metrics export. An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"console", "json", "text"}
	reportFormats = []string{"text", "json", "markdown"}
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "console"},
		Validate: ValidateConfig{Concurrency: 1, Format: "text"},
	}
}

// LoadOptions controls where Load looks for a settings file.
type LoadOptions struct {
	// ConfigFilePath, when set, is the only file read and must exist.
	ConfigFilePath string
	// WorkDir is searched first for argspec.yaml. Defaults to ".".
	WorkDir string
	// ConfigDir is searched second. Defaults to ConfigDir().
	ConfigDir string
}

// Load resolves settings from defaults, the first settings file found and
// the environment, in increasing priority. It returns the file used, or ""
// when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := DefaultConfig()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("validate.concurrency", defaults.Validate.Concurrency)
	v.SetDefault("validate.format", defaults.Validate.Format)
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		if path != "" {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return nil, "", err
	}
	return &cfg, path, nil
}

func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	candidates := []string{filepath.Join(workDir, ConfigFileName)}

	cfgDir := opts.ConfigDir
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err == nil {
			cfgDir = dir
		}
	}
	if cfgDir != "" {
		candidates = append(candidates, filepath.Join(cfgDir, ConfigFileName))
	}

	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}
	return "", nil
}

// ConfigDir returns $XDG_CONFIG_HOME/argspec, defaulting to
// ~/.config/argspec.
func ConfigDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName), nil
}

// validate rejects values the rest of the program cannot act on.
func (c *Config) validate() error {
	var errs []error
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format %q must be one of %s", c.Log.Format, strings.Join(logFormats, ", ")))
	}
	if c.Validate.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("validate.concurrency must be at least 1, got %d", c.Validate.Concurrency))
	}
	if !slices.Contains(reportFormats, strings.ToLower(c.Validate.Format)) {
		errs = append(errs, fmt.Errorf("validate.format %q must be one of %s", c.Validate.Format, strings.Join(reportFormats, ", ")))
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
