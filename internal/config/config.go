// Package config loads posting credentials and defaults. Settings come from
// the nearest .wp-poster.yaml walking up from the working directory, then
// the home and XDG locations, with WP_* environment variables taking
// precedence over any file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

// ErrNotConfigured reports that no config file or environment credentials
// were found.
var ErrNotConfigured = errors.New("config: no configuration found, run the init command or set WP_SITE_URL, WP_USERNAME and WP_APP_PASSWORD")

const projectFile = ".wp-poster.yaml"

// Config holds the site connection and posting defaults.
type Config struct {
	SiteURL     string `mapstructure:"site_url" yaml:"site_url"`
	Username    string `mapstructure:"username" yaml:"username"`
	AppPassword string `mapstructure:"app_password" yaml:"app_password"`
	Format      string `mapstructure:"format" yaml:"format"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat   string `mapstructure:"log_format" yaml:"log_format"`

	// Source records which file the settings came from, empty when the
	// environment alone supplied them.
	Source string `mapstructure:"-" yaml:"-"`
}

// Validate checks that the connection settings are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SiteURL, validation.Required, is.URL),
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.AppPassword, validation.Required),
		validation.Field(&c.Format, validation.In("", "raw", "gutenberg")),
	)
}

// Load resolves the active configuration starting from dir.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("format", "raw")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetEnvPrefix("WP")
	v.AutomaticEnv()
	for _, key := range []string{"site_url", "username", "app_password", "format", "log_level", "log_format"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	source := ""
	if path := findConfigFile(dir); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		source = path
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Source = source

	if cfg.SiteURL == "" && cfg.Username == "" && cfg.AppPassword == "" {
		return nil, ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns the first existing config file in precedence order.
func findConfigFile(dir string) string {
	for _, path := range SearchPaths(dir) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// SearchPaths lists every location consulted, nearest first: .wp-poster.yaml
// in dir and each parent, then the home file, then the XDG config file.
func SearchPaths(dir string) []string {
	var paths []string
	if abs, err := filepath.Abs(dir); err == nil {
		for current := abs; ; {
			paths = append(paths, filepath.Join(current, projectFile))
			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, projectFile))
		paths = append(paths, filepath.Join(home, ".config", "wp-poster", "config.yaml"))
	}
	return paths
}

// DefaultPath is where the init command writes a new global config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, projectFile), nil
}
