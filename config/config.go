// Package config provides configuration loading and management for semgloss.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semgloss/glossary"
)

// Config represents the complete semgloss configuration
type Config struct {
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Watch      WatchConfig      `yaml:"watch"`
	HTTP       HTTPConfig       `yaml:"http"`
	NATS       NATSConfig       `yaml:"nats"`
	Log        LogConfig        `yaml:"log"`
}

// VocabularyConfig configures where terms come from
type VocabularyConfig struct {
	// Paths are files or doublestar globs (e.g., "glossary/**/*.yaml")
	Paths []string `yaml:"paths"`
	// Builtin includes the embedded vocabulary beneath the files (default: true)
	Builtin *bool `yaml:"builtin,omitempty"`
	// Malformed is the policy for entries with neither key nor text: reject or skip
	Malformed string `yaml:"malformed"`
}

// UseBuiltin reports whether the embedded vocabulary is included.
func (v VocabularyConfig) UseBuiltin() bool {
	return v.Builtin == nil || *v.Builtin
}

// WatchConfig configures vocabulary file watching
type WatchConfig struct {
	// Enabled rebuilds the index when vocabulary files change
	Enabled bool `yaml:"enabled"`
	// DebounceDelay is how long to collect changes before rebuilding (default: 500ms)
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// HTTPConfig configures the lookup API
type HTTPConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `yaml:"addr"`
	// Prefix is the path prefix for glossary handlers (default: api/glossary)
	Prefix string `yaml:"prefix"`
}

// NATSConfig configures rebuild announcements
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL string `yaml:"url"`
	// Subject receives an event each time the index is rebuilt
	Subject string `yaml:"subject"`
	// SnapshotBucket is the KV bucket holding the last good vocabulary (empty = no snapshots)
	SnapshotBucket string `yaml:"snapshot_bucket"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Vocabulary: VocabularyConfig{
			Paths:     nil, // Builtin only
			Malformed: string(glossary.MalformedReject),
		},
		Watch: WatchConfig{
			Enabled:       false,
			DebounceDelay: 500 * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Addr:   ":8080",
			Prefix: "api/glossary",
		},
		NATS: NATSConfig{
			URL:            "",
			Subject:        "glossary.index.rebuilt",
			SnapshotBucket: "SEMGLOSS_SNAPSHOTS",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if !glossary.MalformedPolicy(c.Vocabulary.Malformed).Valid() {
		return fmt.Errorf("vocabulary.malformed must be reject or skip, got %q", c.Vocabulary.Malformed)
	}
	if !c.Vocabulary.UseBuiltin() && len(c.Vocabulary.Paths) == 0 {
		return fmt.Errorf("vocabulary.paths is required when vocabulary.builtin is false")
	}
	if c.Watch.Enabled && len(c.Vocabulary.Paths) == 0 {
		return fmt.Errorf("watch.enabled requires vocabulary.paths")
	}
	if c.Watch.DebounceDelay < 0 {
		return fmt.Errorf("watch.debounce_delay must not be negative")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults,
// expanding ${VAR} and ${VAR:-default} references first
func LoadFromFile(path string) (*Config, error) {
	layer, err := loadLayer(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// loadLayer decodes a YAML file into a zero Config. Keys the file does not
// mention stay zero so Merge leaves earlier layers alone.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal([]byte(ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Vocabulary
	if len(other.Vocabulary.Paths) > 0 {
		c.Vocabulary.Paths = other.Vocabulary.Paths
	}
	if other.Vocabulary.Builtin != nil {
		builtin := *other.Vocabulary.Builtin
		c.Vocabulary.Builtin = &builtin
	}
	if other.Vocabulary.Malformed != "" {
		c.Vocabulary.Malformed = other.Vocabulary.Malformed
	}

	// Watch
	if other.Watch.Enabled {
		c.Watch.Enabled = true
	}
	if other.Watch.DebounceDelay != 0 {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}

	// HTTP
	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}
	if other.HTTP.Prefix != "" {
		c.HTTP.Prefix = other.HTTP.Prefix
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.NATS.SnapshotBucket != "" {
		c.NATS.SnapshotBucket = other.NATS.SnapshotBucket
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
