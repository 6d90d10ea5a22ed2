package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/fleety/fleetyctl/internal/errors"
)

// Config holds client configuration.
//
// Values are resolved in three layers: built-in defaults, the YAML config
// file, then FLEETY_* environment variables. Later layers win.
type Config struct {
	// APIURL is the base URL of the Fleety platform API
	APIURL string `yaml:"api_url" envconfig:"API_URL"`

	// StateDir is where session state is persisted
	StateDir string `yaml:"state_dir" envconfig:"STATE_DIR"`

	// RequestTimeout bounds every remote call
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`

	// LogLevel is the minimum log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// LogFormat is the log output format (text, json)
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		StateDir:       defaultStateDir(),
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultStateDir(), "config.yaml")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fleety"
	}
	return filepath.Join(home, ".fleety")
}

// Load resolves configuration from the file at path and the environment.
//
// A missing config file is not an error; a file that exists but cannot be
// parsed is, so a typo never silently falls back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to parse config file: "+path, err).
				WithSuggestion("Check the YAML syntax of the config file")
		}
	case os.IsNotExist(err):
		// defaults apply
	default:
		return nil, errors.Wrap(errors.ErrCodeConfigRead, "failed to read config file: "+path, err)
	}

	if err := envconfig.Process("fleety", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to parse FLEETY_* environment variables", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved configuration for usable values.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "api_url cannot be empty").
			WithSuggestion("Set api_url in the config file or FLEETY_API_URL in the environment")
	}
	if c.StateDir == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "state_dir cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "request_timeout must be positive")
	}
	return nil
}
