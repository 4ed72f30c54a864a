package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/jsonshape/internal/errors"
	"gopkg.in/yaml.v3"
)

// Default values shared by the CLI, the HTTP server and the config file.
const (
	DefaultAction   = "removeData"
	DefaultFormat   = "json"
	DefaultIndent   = "  "
	DefaultMaxDepth = 512
	DefaultAddr     = ":8080"
)

// Config represents the complete configuration for jsonshape
type Config struct {
	Action string       `yaml:"action"`
	Output OutputConfig `yaml:"output"`
	Limits LimitsConfig `yaml:"limits"`
	Types  TypesConfig  `yaml:"types"`
	Schema SchemaConfig `yaml:"schema"`
	Server ServerConfig `yaml:"server"`
	Dev    DevConfig    `yaml:"dev"`
}

// OutputConfig controls how results are serialized
type OutputConfig struct {
	Format     string `yaml:"format"` // json or yaml
	Indent     string `yaml:"indent"`
	EscapeHTML bool   `yaml:"escape_html"`
}

// LimitsConfig bounds the resources a single request may use
type LimitsConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// TypesConfig controls leaf type naming
type TypesConfig struct {
	SplitIntegers bool `yaml:"split_integers"`
}

// SchemaConfig controls schema inference
type SchemaConfig struct {
	LegacyRoot bool `yaml:"legacy_root"`
}

// ServerConfig controls the HTTP transport
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Action: DefaultAction,
		Output: OutputConfig{
			Format:     DefaultFormat,
			Indent:     DefaultIndent,
			EscapeHTML: false,
		},
		Limits: LimitsConfig{
			MaxDepth: DefaultMaxDepth,
		},
		Types: TypesConfig{
			SplitIntegers: false,
		},
		Schema: SchemaConfig{
			LegacyRoot: false,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonshape.yml", ".jsonshape.yaml", "jsonshape.yml", "jsonshape.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return errors.NewConfigError(
			fmt.Sprintf("unsupported output format '%s' (want json or yaml)", c.Output.Format),
			errors.ErrInvalidConfig,
		)
	}
	if strings.Trim(c.Output.Indent, " \t") != "" {
		return errors.NewConfigError(
			fmt.Sprintf("output.indent may only contain spaces and tabs, got %q", c.Output.Indent),
			errors.ErrInvalidConfig,
		)
	}
	if c.Limits.MaxDepth <= 0 {
		return errors.NewConfigError(
			fmt.Sprintf("limits.max_depth must be positive, got %d", c.Limits.MaxDepth),
			errors.ErrInvalidConfig,
		)
	}
	return nil
}

// Overrides holds the CLI flags that were explicitly set.
// Nil pointers and empty strings leave the file or default value in place.
type Overrides struct {
	Action        string
	Format        string
	Indent        *string
	MaxDepth      *int
	SplitIntegers *bool
	LegacyRoot    *bool
	Addr          string
	Debug         *bool
}

// Apply merges explicitly set overrides into c
func (o Overrides) Apply(c *Config) {
	if o.Action != "" {
		c.Action = o.Action
	}
	if o.Format != "" {
		c.Output.Format = o.Format
	}
	if o.Indent != nil {
		c.Output.Indent = *o.Indent
	}
	if o.MaxDepth != nil {
		c.Limits.MaxDepth = *o.MaxDepth
	}
	if o.SplitIntegers != nil {
		c.Types.SplitIntegers = *o.SplitIntegers
	}
	if o.LegacyRoot != nil {
		c.Schema.LegacyRoot = *o.LegacyRoot
	}
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.Debug != nil {
		c.Dev.Debug = *o.Debug
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence.
// An empty configPath falls back to FindConfigFile, and to the defaults when
// no file is found.
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	overrides.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
