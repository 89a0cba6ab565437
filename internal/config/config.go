// Package config loads schemaevolve settings.
//
// Values are layered with koanf: built-in defaults, then schemaevolve.yaml (or
// the file given with --config), then SCHEMAEVOLVE_* environment variables,
// then explicitly set command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/tordrt/schemaevolve/internal/backend"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "schemaevolve.yaml"

const envPrefix = "SCHEMAEVOLVE_"

// Defaults.
const (
	DefaultDialect  = "postgres"
	DefaultFormat   = "text"
	DefaultLogLevel = "info"
	DefaultHistory  = ".schemaevolve/history.db"
)

// Config holds all settings.
type Config struct {
	DatabaseURL string `koanf:"database_url"`
	Dialect     string `koanf:"dialect"`
	History     string `koanf:"history"`
	Format      string `koanf:"format"`
	LogLevel    string `koanf:"log_level"`
	// Renames are rename hints of the form namespace.Model.old=new.
	Renames []string `koanf:"renames"`
	// Initials map namespace.Model.field to the value existing rows get.
	Initials map[string]string `koanf:"initials"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"db-url": "database_url",
	"rename": "renames",
}

// Load reads the configuration. cfgFile may be empty to use DefaultFile when
// it exists. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"dialect":   DefaultDialect,
		"format":    DefaultFormat,
		"log_level": DefaultLogLevel,
		"history":   DefaultHistory,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// SCHEMAEVOLVE_DATABASE_URL -> database_url
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" || f.Name == "initial" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills empty settings.
func (c *Config) ApplyDefaults() {
	if c.Dialect == "" {
		c.Dialect = DefaultDialect
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.History == "" {
		c.History = DefaultHistory
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := backend.ForName(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %w", err)
	}
	switch c.Format {
	case "text", "markdown":
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return level, nil
}
