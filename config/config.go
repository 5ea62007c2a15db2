// Package config provides YAML configuration parsing for the mbedtargets
// command.
//
// Example configuration:
//
//	database:
//	  url: https://os.mbed.com/api/v4/targets/all
//	  auth_token: ${MBED_API_AUTH_TOKEN:-}
//	  timeout: 10s
//	  headers:
//	    User-Agent: mbedtargets
//
// Either the online database section, offline: true (the snapshot compiled
// into the binary) or snapshot_file: path/to/db.json selects the data source.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/armmbed/mbedtargets"
)

// minTimeout is the smallest database request timeout a config may set.
const minTimeout = 1 * time.Second

// Config is the root configuration structure for the mbedtargets command.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML, or [Default] for the
// settings used when no file is given.
type Config struct {
	// Database configures the online board database.
	Database DatabaseConfig `yaml:"database"`

	// Offline serves the snapshot compiled into the binary instead of
	// querying the online database.
	Offline bool `yaml:"offline"`

	// SnapshotFile reads the board database from a JSON file on disk.
	// Supports environment variable substitution.
	SnapshotFile string `yaml:"snapshot_file"`
}

// DatabaseConfig configures the online board database.
type DatabaseConfig struct {
	// URL is the database endpoint. Defaults to the Mbed online database.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// AuthToken is sent as a bearer token. When the key is absent the
	// MBED_API_AUTH_TOKEN environment variable is used.
	AuthToken *string `yaml:"auth_token"`

	// Timeout is the request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given: the online
// database at its default URL with a 10s timeout.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:     mbedtargets.DefaultDatabaseURL,
			Timeout: Duration(10 * time.Second),
		},
	}
}

// Source describes the data source the configuration selects, for display.
func (c *Config) Source() string {
	switch {
	case c.Offline:
		return "offline snapshot"
	case c.SnapshotFile != "":
		return "snapshot file " + c.SnapshotFile
	default:
		return "online database " + c.Database.URL
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the database URL, auth token,
// header values and snapshot file path. Unset fields take the values of
// [Default].
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// an explicit empty url means the default, like an absent one
	if cfg.Database.URL == "" {
		cfg.Database.URL = mbedtargets.DefaultDatabaseURL
	}
	if cfg.Database.Timeout == 0 {
		cfg.Database.Timeout = Duration(10 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	db := &c.Database

	expanded, err := expandEnvVars(db.URL)
	if err != nil {
		return fmt.Errorf("database.url: %w", err)
	}
	db.URL = expanded

	parsedURL, err := url.Parse(db.URL)
	if err != nil {
		return fmt.Errorf("database.url: invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("database.url: url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("database.url: url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if db.AuthToken != nil {
		token, err := expandEnvVars(*db.AuthToken)
		if err != nil {
			return fmt.Errorf("database.auth_token: %w", err)
		}
		db.AuthToken = &token
	}

	for k, v := range db.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("database.headers[%s]: %w", k, err)
		}
		db.Headers[k] = expanded
	}

	if db.Timeout.Duration() < 0 {
		return fmt.Errorf("database.timeout: timeout cannot be negative, got %s", db.Timeout.Duration())
	}
	if db.Timeout.Duration() < minTimeout {
		return fmt.Errorf("database.timeout: timeout must be at least %s, got %s", minTimeout, db.Timeout.Duration())
	}

	if c.SnapshotFile != "" {
		expanded, err := expandEnvVars(c.SnapshotFile)
		if err != nil {
			return fmt.Errorf("snapshot_file: %w", err)
		}
		c.SnapshotFile = expanded
	}

	if c.Offline && c.SnapshotFile != "" {
		return errors.New("offline and snapshot_file are mutually exclusive")
	}

	return nil
}
