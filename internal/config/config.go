// Package config loads the geocolumn command configuration.
//
// Settings come from an optional YAML file. Environment variables override the
// logging settings so that a .env file can supply them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/geocolumn"
	"github.com/nao1215/geocolumn/domain/model"
)

// Environment variables read by Load.
const (
	EnvLogLevel  = "GEOCOLUMN_LOG_LEVEL"
	EnvLogFormat = "GEOCOLUMN_LOG_FORMAT"
	EnvSeqURL    = "GEOCOLUMN_SEQ_URL"
)

// Config holds all command configuration.
type Config struct {
	// Category is the category marker kept by the city filter (default: CIDADE).
	// An empty value disables filtering.
	Category string `yaml:"category"`

	// PositionHints are tried in order by the positional tier. An explicit empty
	// list disables the tier.
	PositionHints []PositionHint `yaml:"position_hints"`

	// Keywords override the name-pattern keywords per role. Roles left out keep
	// the built-in keywords.
	Keywords map[string][]string `yaml:"keywords"`

	Logging LoggingConfig `yaml:"logging"`
}

// PositionHint is the YAML form of geocolumn.PositionHint.
type PositionHint struct {
	Name      string `yaml:"name"`
	AdminCode int    `yaml:"admin_code"`
	Category  int    `yaml:"category"`
	Longitude int    `yaml:"longitude"`
	Latitude  int    `yaml:"latitude"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level"`
	// Format is the log format: text or json (default: text)
	Format string `yaml:"format"`
	// SeqURL enables shipping logs to Seq when set
	SeqURL string `yaml:"seq_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	hints := geocolumn.DefaultPositionHints()
	cfg := &Config{
		Category:      geocolumn.CityMarker,
		PositionHints: make([]PositionHint, 0, len(hints)),
		Keywords:      make(map[string][]string),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
	for _, h := range hints {
		cfg.PositionHints = append(cfg.PositionHints, PositionHint{
			Name:      h.Name,
			AdminCode: h.Positions[0],
			Category:  h.Positions[1],
			Longitude: h.Positions[2],
			Latitude:  h.Positions[3],
		})
	}
	for role, kws := range geocolumn.DefaultKeywords() {
		cfg.Keywords[role.String()] = append([]string(nil), kws...)
	}
	return cfg
}

// Load reads the YAML file at path on top of the defaults, applies environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is given by the user
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML data on top of the defaults without validating it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides logging settings with non-empty environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvSeqURL); v != "" {
		c.Logging.SeqURL = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	for _, h := range c.ResolverHints() {
		if err := h.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	for name := range c.Keywords {
		if !isRole(name) {
			errs = append(errs, fmt.Errorf("keywords: unknown role %q", name))
		}
	}
	if err := c.ResolverKeywords().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("keywords: %w", err))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// ResolverHints converts the configured hints for the resolver.
func (c *Config) ResolverHints() []geocolumn.PositionHint {
	hints := make([]geocolumn.PositionHint, 0, len(c.PositionHints))
	for _, h := range c.PositionHints {
		hints = append(hints, geocolumn.PositionHint{
			Name:      h.Name,
			Positions: [4]int{h.AdminCode, h.Category, h.Longitude, h.Latitude},
		})
	}
	return hints
}

// ResolverKeywords converts the configured keywords for the resolver.
func (c *Config) ResolverKeywords() geocolumn.Keywords {
	keywords := make(geocolumn.Keywords, len(model.Roles))
	for _, role := range model.Roles {
		keywords[role] = append([]string(nil), c.Keywords[role.String()]...)
	}
	return keywords
}

func isRole(name string) bool {
	for _, role := range model.Roles {
		if role.String() == name {
			return true
		}
	}
	return false
}
