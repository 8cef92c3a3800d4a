// Package loader reads schema files and assembles their records.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rlch/icetype"
)

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("loader: unsupported file format")
	ErrFileNotFound      = errors.New("loader: file not found")
)

// LoadError describes a file that could not be loaded.
type LoadError struct {
	Path string
	// Record is the 0-based index of the failing record within the file, or
	// -1 when the file itself could not be read or decoded.
	Record int
	// Line is the source line of the failing record key, 0 when unknown.
	Line  int
	Cause error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Cause)
	}

	return fmt.Sprintf("%s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// File is a loaded schema file.
type File struct {
	Path string
	// Hash is the xxh3 hash of the file content.
	Hash    uint64
	Records []*icetype.Record
	Schemas []*icetype.IceTypeSchema
}

// Loader handles loading and caching of schema files.
type Loader struct {
	mu sync.Mutex
	// cache stores loaded files by absolute path.
	cache  map[string]*File
	logger *zap.Logger

	// Parse assembles one record. Defaults to icetype.ParseSchema but can be
	// overridden for testing.
	Parse func(rec *icetype.Record) (*icetype.IceTypeSchema, error)
}

// NewLoader creates a new loader. A nil logger discards log output.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		cache:  make(map[string]*File),
		logger: logger,
		Parse:  icetype.ParseSchema,
	}
}

// Load loads a file. A cached result is returned while the content hash is
// unchanged.
func (l *Loader) Load(path string) (*File, error) {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, &LoadError{Path: path, Record: -1, Cause: err}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}

		return nil, &LoadError{Path: path, Record: -1, Cause: err}
	}

	hash := xxh3.Hash(data)

	l.mu.Lock()
	cached, ok := l.cache[absPath]
	l.mu.Unlock()

	if ok && cached.Hash == hash {
		l.logger.Debug("cache hit", zap.String("path", absPath))
		return cached, nil
	}

	l.logger.Debug("loading", zap.String("path", absPath), zap.Uint64("hash", hash))

	format, err := FormatOf(absPath)
	if err != nil {
		return nil, &LoadError{Path: path, Record: -1, Cause: err}
	}

	records, err := Decode(data, format)
	if err != nil {
		return nil, &LoadError{Path: path, Record: -1, Cause: err}
	}

	file := &File{
		Path:    absPath,
		Hash:    hash,
		Records: records,
		Schemas: make([]*icetype.IceTypeSchema, 0, len(records)),
	}

	for i, rec := range records {
		schema, err := l.Parse(rec)
		if err != nil {
			l.logger.Debug("parse failed", zap.String("path", absPath), zap.Int("record", i), zap.Error(err))
			return nil, &LoadError{Path: path, Record: i, Line: errorLine(rec, err), Cause: err}
		}

		file.Schemas = append(file.Schemas, schema)
	}

	l.mu.Lock()
	l.cache[absPath] = file
	l.mu.Unlock()

	return file, nil
}

// LoadAll loads the files concurrently and returns them in input order. The
// first error cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]*File, error) {
	files := make([]*File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			file, err := l.Load(path)
			if err != nil {
				return err
			}

			files[i] = file

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// Clear clears the cache.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache = make(map[string]*File)
}

// Cached returns all cached files by absolute path.
func (l *Loader) Cached() map[string]*File {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make(map[string]*File, len(l.cache))
	maps.Copy(result, l.cache)

	return result
}

// Schemas flattens the schemas of files in order.
func Schemas(files []*File) []*icetype.IceTypeSchema {
	var out []*icetype.IceTypeSchema
	for _, f := range files {
		out = append(out, f.Schemas...)
	}

	return out
}

func errorLine(rec *icetype.Record, err error) int {
	var perr *icetype.ParseError
	if !errors.As(err, &perr) || perr.Field == "" {
		return 0
	}

	return rec.KeyLine(perr.Field)
}

// Format is a schema file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Decode reads every record in data. A file holds one mapping, a sequence of
// mappings, or (YAML only) several documents of either shape.
func Decode(data []byte, format Format) ([]*icetype.Record, error) {
	if format != FormatYAML && format != FormatJSON {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	// JSON is a subset of YAML flow syntax, so both go through yaml.v3.
	dec := yaml.NewDecoder(strings.NewReader(string(data)))

	var records []*icetype.Record

	for doc := 0; ; doc++ {
		var node yaml.Node

		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		if format == FormatJSON && doc > 0 {
			return nil, fmt.Errorf("%w: json file holds more than one document", icetype.ErrInvalidRecord)
		}

		recs, err := decodeDocument(&node)
		if err != nil {
			return nil, err
		}

		records = append(records, recs...)
	}
}

func decodeDocument(node *yaml.Node) ([]*icetype.Record, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}

		node = node.Content[0]
	}

	switch node.Kind {
	case yaml.MappingNode:
		rec := icetype.NewRecord()
		if err := rec.UnmarshalYAML(node); err != nil {
			return nil, err
		}

		return []*icetype.Record{rec}, nil
	case yaml.SequenceNode:
		records := make([]*icetype.Record, 0, len(node.Content))

		for _, item := range node.Content {
			rec := icetype.NewRecord()
			if err := rec.UnmarshalYAML(item); err != nil {
				return nil, err
			}

			records = append(records, rec)
		}

		return records, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
	}

	return nil, fmt.Errorf("%w: line %d: expected a mapping or a list of mappings", icetype.ErrInvalidRecord, node.Line)
}
