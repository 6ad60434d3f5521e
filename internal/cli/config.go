package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ato/corvoid/pkg/cache"
	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/httputil"
	"github.com/ato/corvoid/pkg/repository"
	"github.com/ato/corvoid/pkg/resolve"
)

// Environment variables overriding the config file.
const (
	envRepository      = "CORVOID_REPOSITORY"
	envLocalRepository = "CORVOID_LOCAL_REPOSITORY"
)

// Config is the contents of config.toml.
type Config struct {
	Repository      string   `toml:"repository"`
	LocalRepository string   `toml:"local_repository"`
	Workers         int      `toml:"workers"`
	MetadataTTL     duration `toml:"metadata_ttl"`
	Retries         int      `toml:"retries"`
	RetryDelay      duration `toml:"retry_delay"`
	Timeout         duration `toml:"timeout"`
	Offline         bool     `toml:"offline"`
}

// duration decodes "24h"-style strings.
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() Config {
	return Config{
		Repository:  repository.DefaultURL,
		Workers:     resolve.DefaultWorkers,
		MetadataTTL: duration{cache.DefaultMetadataTTL},
		Retries:     1,
		RetryDelay:  duration{httputil.DefaultDelay},
		Timeout:     duration{repository.DefaultTimeout},
	}
}

// configPath returns $XDG_CONFIG_HOME/corvoid/config.toml, falling back to
// ~/.config.
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path over the defaults and applies the environment.
// A missing file leaves the defaults in place.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
	}

	if v := os.Getenv(envRepository); v != "" {
		cfg.Repository = v
	}
	if v := os.Getenv(envLocalRepository); v != "" {
		cfg.LocalRepository = v
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be at least 1, got %d", c.Workers)
	}
	if c.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "retries must be at least 1, got %d", c.Retries)
	}
	if c.MetadataTTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "metadata_ttl must be positive")
	}
	return errors.ValidateURL(c.Repository)
}

// localRepository returns the configured cache root with ~ expanded, or
// the Maven default.
func (c *Config) localRepository() (string, error) {
	if c.LocalRepository == "" {
		return cache.DefaultRoot()
	}
	return expandHome(c.LocalRepository)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
