// Package config loads the client configuration from a YAML file and fills
// in defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client settings.
type Config struct {
	// APIBaseURL is the backend API root, e.g. http://localhost:8080/api.
	APIBaseURL string `yaml:"API_BASE_URL"`
	// SessionFile is where the identity/credential pair is persisted.
	SessionFile string `yaml:"SESSION_FILE"`
	// RequestTimeoutSeconds bounds every backend call.
	RequestTimeoutSeconds int `yaml:"REQUEST_TIMEOUT_SECONDS"`
}

const (
	defaultBaseURL        = "http://localhost:8080/api"
	defaultTimeoutSeconds = 15
)

// Load reads the YAML file at path. A missing file yields the defaults; a
// present but unparsable file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultBaseURL
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = defaultTimeoutSeconds
	}
	if c.SessionFile == "" {
		c.SessionFile = defaultSessionFile()
	}
}

// RequestTimeout returns the timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "projetojpa", "session.json")
}
