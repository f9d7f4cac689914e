// Package loader finds SQL files, segments them into blocks and parses every
// block, one file per worker.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/baconql/pkg/compiler"
	"github.com/leapstack-labs/baconql/pkg/segment"
)

// DefaultConcurrency is the number of files loaded at once when no option
// overrides it.
const DefaultConcurrency = 4

// Extension is the file extension of SQL block files.
const Extension = ".sql"

// FileResult is the outcome of loading one file. Blocks and Errors are in
// source order; a block that failed to parse appears only in Errors.
type FileResult struct {
	Path   string
	Hash   string
	Blocks []*compiler.Block
	Errors []error
}

// HasErrors returns true if any block in the file failed to parse.
func (r *FileResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Loader loads SQL block files.
type Loader struct {
	logger      *slog.Logger
	concurrency int
	exclude     []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency bounds the number of files loaded at once. Values below 1
// are ignored.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithExclude skips files whose path or base name matches any of the glob
// patterns during directory expansion.
func WithExclude(patterns ...string) Option {
	return func(l *Loader) {
		l.exclude = append(l.exclude, patterns...)
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger:      slog.New(slog.DiscardHandler),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Hash returns the content fingerprint used by the catalog.
func Hash(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}

// LoadFile reads, segments and parses one file. Only I/O failures are
// returned as errors; parse failures are collected in the result.
func (l *Loader) LoadFile(path string) (*FileResult, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the caller or a directory walk
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result := &FileResult{
		Path: path,
		Hash: Hash(content),
	}

	raws := segment.Split(path, string(content))
	for b, err := range compiler.Parse(slices.Values(raws)) {
		if err != nil {
			l.logger.Debug("block parse error", "path", path, "error", err.Error())
			result.Errors = append(result.Errors, err)
			continue
		}
		if b.VerbMismatch() {
			l.logger.Warn("statement does not match declared operation",
				"path", path,
				"line", b.Line,
				"name", b.Name(),
				"operation", string(b.Def.Op),
				"verb", b.Verb())
		}
		result.Blocks = append(result.Blocks, b)
	}

	l.logger.Debug("loaded file",
		"path", path,
		"hash", result.Hash,
		"blocks", len(result.Blocks),
		"errors", len(result.Errors))

	return result, nil
}

// LoadPaths expands paths and loads every file concurrently. Results are in
// the order Expand returns the files.
func (l *Loader) LoadPaths(ctx context.Context, paths ...string) ([]*FileResult, error) {
	files, err := l.Expand(paths...)
	if err != nil {
		return nil, err
	}

	results := make([]*FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := l.LoadFile(file)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Expand turns paths into a de-duplicated list of files. Directories are
// walked recursively for *.sql files in lexical order, skipping hidden
// directories and excluded files. Plain file arguments are kept as given.
func (l *Loader) Expand(paths ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != Extension || l.excluded(path) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	return files, nil
}

func (l *Loader) excluded(path string) bool {
	for _, pattern := range l.exclude {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}
