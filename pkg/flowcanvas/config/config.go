// Package config loads flowcanvas client configuration from YAML or
// JSON files.
//
// All fields have working defaults; a missing file section falls back
// field by field, so a minimal config can set only the API base URL.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full flowcanvas client configuration.
type Config struct {
	API     API     `yaml:"api" json:"api"`
	Editor  Editor  `yaml:"editor" json:"editor"`
	History History `yaml:"history" json:"history"`
}

// API configures the connection to the workflow execution service.
type API struct {
	// BaseURL is the service root, e.g. "https://api.example.com".
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Token is the bearer token sent on every request.
	Token string `yaml:"token" json:"token"`
	// ClientID is the value of the ClientID request header.
	ClientID string `yaml:"client_id" json:"client_id"`
	// Language sets Accept-Language and Content-Language.
	Language string `yaml:"language" json:"language"`
	// Timeout bounds non-streaming requests. Streaming requests are
	// bounded by their context instead.
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// Editor configures derived-data behavior in the builder.
type Editor struct {
	// DebounceInterval delays reference extraction while typing.
	DebounceInterval Duration `yaml:"debounce_interval" json:"debounce_interval"`
	// ReplayInterval is the default cursor step of run replay.
	ReplayInterval Duration `yaml:"replay_interval" json:"replay_interval"`
}

// History configures local draft snapshots.
type History struct {
	// Path is the SQLite file for drafts; empty keeps drafts in
	// memory only.
	Path string `yaml:"path" json:"path"`
	// Keep is the number of snapshots retained per workflow.
	Keep int `yaml:"keep" json:"keep"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		API: API{
			Language: "zh_CN",
			Timeout:  Duration(30 * time.Second),
		},
		Editor: Editor{
			DebounceInterval: Duration(300 * time.Millisecond),
			ReplayInterval:   Duration(300 * time.Millisecond),
		},
		History: History{
			Keep: 20,
		},
	}
}

// ErrBaseURLRequired indicates the config has no API base URL.
var ErrBaseURLRequired = errors.New("api.base_url is required")

// Validate checks the configuration for use against a live service.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrBaseURLRequired
	}
	return nil
}

// applyDefaults fills zero-valued fields from Default().
func (c *Config) applyDefaults() {
	def := Default()
	if c.API.Language == "" {
		c.API.Language = def.API.Language
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = def.API.Timeout
	}
	if c.Editor.DebounceInterval <= 0 {
		c.Editor.DebounceInterval = def.Editor.DebounceInterval
	}
	if c.Editor.ReplayInterval <= 0 {
		c.Editor.ReplayInterval = def.Editor.ReplayInterval
	}
	if c.History.Keep <= 0 {
		c.History.Keep = def.History.Keep
	}
}

// FromFile loads configuration from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config with defaults applied.
func FromYAML(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	c.applyDefaults()
	return c, nil
}

// FromJSON parses JSON data into a Config with defaults applied.
func FromJSON(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	c.applyDefaults()
	return c, nil
}
