package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/perfgo/resulttool/resultutils"
	"gopkg.in/yaml.v3"
)

// Grouping strategies for the regression command.
const (
	GroupingFields  = "fields"
	GroupingDefault = "default"
	GroupingDigest  = "digest"
)

const DefaultLimit = 10

var groupings = []string{GroupingFields, GroupingDefault, GroupingDigest}

// Config is the optional resulttool configuration file.
type Config struct {
	// How runs are grouped before regression analysis
	Grouping string `yaml:"grouping"`
	// Key fields per TEST_TYPE for the "fields" grouping
	RegressionFields map[string][]string `yaml:"regression_fields"`
	// Directory layout fields per TEST_TYPE for merged output
	StoreFields map[string][]string `yaml:"store_fields"`
	// Maximum number of regressed tests printed per pair, 0 prints all
	Limit *int `yaml:"limit"`
	// Guess oeselftest metadata when it is missing
	GuessMetadata bool `yaml:"guess_metadata"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML configuration file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration, applies defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Grouping == "" {
		cfg.Grouping = GroupingFields
	}
	if cfg.RegressionFields == nil {
		cfg.RegressionFields = resultutils.RegressionFields
	}
	if cfg.StoreFields == nil {
		cfg.StoreFields = resultutils.StoreFields
	}
	if cfg.Limit == nil {
		limit := DefaultLimit
		cfg.Limit = &limit
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if !slices.Contains(groupings, c.Grouping) {
		return fmt.Errorf("invalid grouping %q: must be one of %v", c.Grouping, groupings)
	}
	if c.Limit != nil && *c.Limit < 0 {
		return fmt.Errorf("invalid limit %d: must not be negative", *c.Limit)
	}
	for testType, fields := range c.RegressionFields {
		if len(fields) == 0 {
			return fmt.Errorf("regression_fields.%s: no fields given", testType)
		}
	}
	for testType, fields := range c.StoreFields {
		if len(fields) == 0 {
			return fmt.Errorf("store_fields.%s: no fields given", testType)
		}
	}
	return nil
}

// RegressionKey returns the key strategy used to pair base and target runs.
func (c *Config) RegressionKey() resultutils.KeyStrategy {
	switch c.Grouping {
	case GroupingDefault:
		return resultutils.DefaultKey
	case GroupingDigest:
		return resultutils.DigestKey
	default:
		return resultutils.TypedKey(c.RegressionFields, nil)
	}
}

// StoreKey returns the key strategy used to lay out merged results.
func (c *Config) StoreKey() resultutils.KeyStrategy {
	return resultutils.TypedKey(c.StoreFields, nil)
}
