package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Configuration field names as they appear in testresults.json
const (
	FieldTestType      = "TEST_TYPE"
	FieldTestSeries    = "TESTSERIES"
	FieldImageBasename = "IMAGE_BASENAME"
	FieldImagePkgType  = "IMAGE_PKGTYPE"
	FieldDistro        = "DISTRO"
	FieldMachine       = "MACHINE"
	FieldStartTime     = "STARTTIME"
	FieldSelftestMeta  = "OESELFTEST_METADATA"
)

// TestType is the closed set of test frameworks the comparison rules
// distinguish between.
type TestType uint8

const (
	TestTypeOther TestType = iota
	TestTypeRuntime
	TestTypeSelftest
)

// ParseTestType maps a TEST_TYPE value onto a TestType.
func ParseTestType(s string) TestType {
	switch s {
	case "runtime":
		return TestTypeRuntime
	case "oeselftest":
		return TestTypeSelftest
	default:
		return TestTypeOther
	}
}

func (t TestType) String() string {
	switch t {
	case TestTypeRuntime:
		return "runtime"
	case TestTypeSelftest:
		return "oeselftest"
	default:
		return "other"
	}
}

// SelectionMetadata describes which tests an oeselftest run selected.
// A nil field is absent (JSON null), which is distinct from an empty list.
type SelectionMetadata struct {
	// Whether every selftest was requested
	RunAllTests *bool `json:"run_all_tests"`
	// Explicit test list (-r)
	RunTests []string `json:"run_tests"`
	// Skipped test prefixes (-R)
	Skips []string `json:"skips"`
	// Machine override (--machine)
	Machine *string `json:"machine"`
	// Tags selected for the run (--select-tag)
	SelectTags []string `json:"select_tags"`
	// Tags excluded from the run (--exclude-tag)
	ExcludeTags []string `json:"exclude_tags"`
}

// Configuration is the typed view of a test run's configuration section.
// Fields not modelled explicitly are kept verbatim in Extra.
type Configuration struct {
	TestType      string
	TestSeries    string
	ImageBasename string
	ImagePkgType  string
	Distro        string
	Machine       string
	StartTime     string
	// Selection metadata, only recorded by oeselftest runs
	SelftestMetadata *SelectionMetadata
	// Remaining configuration values keyed by field name
	Extra map[string]json.RawMessage
}

// Type returns the test framework variant of the configuration.
func (c Configuration) Type() TestType {
	return ParseTestType(c.TestType)
}

func (c *Configuration) stringFields() map[string]*string {
	return map[string]*string{
		FieldTestType:      &c.TestType,
		FieldTestSeries:    &c.TestSeries,
		FieldImageBasename: &c.ImageBasename,
		FieldImagePkgType:  &c.ImagePkgType,
		FieldDistro:        &c.Distro,
		FieldMachine:       &c.Machine,
		FieldStartTime:     &c.StartTime,
	}
}

// Field returns the textual value of a configuration field by name. Missing
// fields and values that are not strings yield an empty string.
func (c Configuration) Field(name string) string {
	if p, ok := c.stringFields()[name]; ok {
		return *p
	}
	raw, ok := c.Extra[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// WithField returns a copy of the configuration with a string field set.
func (c Configuration) WithField(name, value string) Configuration {
	if p, ok := c.stringFields()[name]; ok {
		*p = value
		return c
	}
	extra := make(map[string]json.RawMessage, len(c.Extra)+1)
	for k, v := range c.Extra {
		extra[k] = v
	}
	raw, _ := json.Marshal(value)
	extra[name] = raw
	c.Extra = extra
	return c
}

// MarshalJSON encodes the configuration back into its flat document form.
// Empty known fields are omitted unless they were explicitly null when
// decoded. Keys are written in sorted order rather than document order.
func (c Configuration) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+8)
	for k, v := range c.Extra {
		out[k] = v
	}
	for name, p := range c.stringFields() {
		if *p != "" {
			out[name] = *p
		}
	}
	if c.SelftestMetadata != nil {
		out[FieldSelftestMeta] = c.SelftestMetadata
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a configuration section. Known fields must be
// strings or null; explicit nulls are remembered in Extra.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Configuration{}
	fields := c.stringFields()
	for name, value := range raw {
		_, known := fields[name]
		if (known || name == FieldSelftestMeta) && isNull(value) {
			// kept so the field is written back as null
			c.setExtra(name, value)
			continue
		}
		if p, ok := fields[name]; ok {
			var s *string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("configuration field %s: %w", name, err)
			}
			if s != nil {
				*p = *s
			}
			continue
		}
		if name == FieldSelftestMeta {
			if err := json.Unmarshal(value, &c.SelftestMetadata); err != nil {
				return fmt.Errorf("configuration field %s: %w", name, err)
			}
			continue
		}
		c.setExtra(name, value)
	}
	return nil
}

func (c *Configuration) setExtra(name string, value json.RawMessage) {
	if c.Extra == nil {
		c.Extra = make(map[string]json.RawMessage)
	}
	c.Extra[name] = value
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

// Digest returns the sha256 of the RFC 8785 canonical form of the
// configuration. Configurations that differ only in key order or
// whitespace share a digest.
func (c Configuration) Digest() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize configuration: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
