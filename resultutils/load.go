package resultutils

// This file contains loading and storing of testresults.json documents.

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kaptinlin/jsonschema"
	"github.com/perfgo/resulttool/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ResultsFileName is the file name results are stored under.
const ResultsFileName = "testresults.json"

// ErrInvalidResults is returned for documents that are not in the
// testresults.json shape.
var ErrInvalidResults = errors.New("invalid test results")

//go:embed testresults.schema.json
var schemaData []byte

var (
	schema     *jsonschema.Schema
	schemaOnce sync.Once
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		schema, schemaErr = compiler.Compile(schemaData)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile results schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Decode validates and parses a testresults.json document.
func Decode(data []byte) (*model.RunSet, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidResults)
	}
	if result := s.ValidateJSON(data); !result.IsValid() {
		return nil, fmt.Errorf("%w: schema validation failed: %v", ErrInvalidResults, result.Errors)
	}

	runs := &model.RunSet{}
	if err := json.Unmarshal(data, runs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResults, err)
	}
	for id, record := range runs.All() {
		if record == nil {
			return nil, fmt.Errorf("%w: run %s has no configuration or result section", ErrInvalidResults, id)
		}
	}
	return runs, nil
}

// LoadFile loads a single testresults.json file.
func LoadFile(path string) (*model.RunSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	runs, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return runs, nil
}

// Load loads results from a file, or from every testresults.json found
// below a directory. Unparseable files inside a directory are logged and
// skipped.
func Load(logger zerolog.Logger, path string) (*model.RunSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access results: %w", err)
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	runs := &model.RunSet{}
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ResultsFileName {
			return nil
		}

		loaded, err := LoadFile(p)
		if err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to parse " + ResultsFileName)
			return nil
		}
		logger.Debug().Str("path", p).Int("runs", loaded.Len()).Msg("Loaded results")
		for id, record := range loaded.All() {
			runs.Set(id, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}

	return runs, nil
}

// LoadAll loads several sources concurrently and merges them in argument
// order. Later sources overwrite runs with the same identifier.
func LoadAll(ctx context.Context, logger zerolog.Logger, paths ...string) (*model.RunSet, error) {
	loaded := make([]*model.RunSet, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runs, err := Load(logger, path)
			if err != nil {
				return err
			}
			loaded[i] = runs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &model.RunSet{}
	for _, runs := range loaded {
		for id, record := range runs.All() {
			merged.Set(id, record)
		}
	}
	return merged, nil
}

// Write stores runs as an indented testresults.json document at path.
// Runs and tests keep their order. Configurations are written in the
// normalized form of model.Configuration.MarshalJSON.
func Write(path string, runs *model.RunSet) error {
	if runs == nil {
		runs = &model.RunSet{}
	}
	data, err := json.MarshalIndent(runs, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// WriteIndex stores each group of index as dir/<key>/testresults.json and
// returns the files written in index order. Keys are built from
// configuration values, so a key that would leave dir (for example through a
// ".." segment) is rejected with ErrInvalidResults and nothing further is
// written.
func WriteIndex(dir string, index *Index) ([]string, error) {
	if index == nil {
		return nil, nil
	}
	var written []string
	for key, group := range index.All() {
		path := filepath.Join(dir, filepath.FromSlash(key), ResultsFileName)
		if rel, err := filepath.Rel(dir, path); err != nil || !filepath.IsLocal(rel) {
			return written, fmt.Errorf("%w: group key %q escapes %s", ErrInvalidResults, key, dir)
		}
		if err := Write(path, group); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
