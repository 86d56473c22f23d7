package resultutils

import (
	"strings"

	"github.com/perfgo/resulttool/model"
)

// KeyStrategy derives the group key a result record is indexed under.
type KeyStrategy func(cfg model.Configuration) string

// DefaultKey groups runs of the same test type, distro, machine and image.
// Field values are joined verbatim, so a value containing "/" can yield the
// same key as a different tuple: DISTRO "d/a" with MACHINE "b" and DISTRO
// "d" with MACHINE "a/b" both give "TYPE/d/a/b/IMAGE".
func DefaultKey(cfg model.Configuration) string {
	return cfg.TestType + "/" + cfg.Distro + "/" + cfg.Machine + "/" + cfg.ImageBasename
}

// FlattenKey puts every record into the single group "".
func FlattenKey(model.Configuration) string {
	return ""
}

// FieldKey joins the named configuration fields with "/". Missing fields
// produce empty segments. Values are not escaped; see DefaultKey for the
// resulting collisions.
func FieldKey(fields ...string) KeyStrategy {
	return func(cfg model.Configuration) string {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = cfg.Field(f)
		}
		return strings.Join(parts, "/")
	}
}

// TypedKey selects the key fields by TEST_TYPE. Test types missing from
// fields fall back to fallback, or to DefaultKey when fallback is nil.
func TypedKey(fields map[string][]string, fallback KeyStrategy) KeyStrategy {
	if fallback == nil {
		fallback = DefaultKey
	}
	strategies := make(map[string]KeyStrategy, len(fields))
	for testType, f := range fields {
		strategies[testType] = FieldKey(f...)
	}
	return func(cfg model.Configuration) string {
		if s, ok := strategies[cfg.TestType]; ok {
			return s(cfg)
		}
		return fallback(cfg)
	}
}

// DigestKey groups records whose configurations are identical, using the
// canonical configuration digest as key. A configuration that cannot be
// encoded falls back to DefaultKey.
func DigestKey(cfg model.Configuration) string {
	digest, err := cfg.Digest()
	if err != nil {
		return DefaultKey(cfg)
	}
	return digest
}

// StoreFields are the directory layout fields used when storing results,
// per test type.
var StoreFields = map[string][]string{
	"oeselftest": {model.FieldTestType, model.FieldTestSeries, model.FieldMachine},
	"runtime":    {model.FieldTestType, model.FieldDistro, model.FieldMachine, model.FieldImageBasename},
	"sdk":        {model.FieldTestType, model.FieldMachine, "SDKMACHINE", model.FieldImageBasename},
	"sdkext":     {model.FieldTestType, model.FieldMachine, "SDKMACHINE", model.FieldImageBasename},
	"manual":     {model.FieldTestType, "TEST_MODULE", model.FieldMachine, model.FieldImageBasename},
}

// RegressionFields pair base and target runs for regression analysis,
// per test type.
var RegressionFields = map[string][]string{
	"oeselftest": {model.FieldTestType, model.FieldMachine},
	"runtime":    {model.FieldTestSeries, model.FieldTestType, model.FieldImageBasename, model.FieldMachine, model.FieldImagePkgType, model.FieldDistro},
	"sdk":        {model.FieldTestSeries, model.FieldTestType, model.FieldImageBasename, model.FieldMachine, "SDKMACHINE"},
	"sdkext":     {model.FieldTestSeries, model.FieldTestType, model.FieldImageBasename, model.FieldMachine, "SDKMACHINE"},
	"manual":     {model.FieldTestType, "TEST_MODULE", model.FieldImageBasename, model.FieldMachine},
}
