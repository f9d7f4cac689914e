// Package catalog records parsed blocks in a SQLite database so that
// unchanged files can be skipped and blocks can be looked up by name.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/baconql/pkg/compiler"

	// sqlite driver for the catalog database.
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver used for the catalog.
const DriverName = "sqlite"

// MemoryPath opens a private in-memory catalog.
const MemoryPath = ":memory:"

var errNotOpen = errors.New("database not opened")

// Run is one indexing pass.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Files      int
	Blocks     int
}

// BlockRecord is a block as stored in the catalog.
type BlockRecord struct {
	FilePath       string   `json:"file_path" yaml:"file_path"`
	Line           int      `json:"line" yaml:"line"`
	Name           string   `json:"name" yaml:"name"`
	Operation      string   `json:"operation" yaml:"operation"`
	Result         string   `json:"result" yaml:"result"`
	Inputs         []string `json:"inputs" yaml:"inputs"`
	ImplicitInputs []string `json:"implicit_inputs" yaml:"implicit_inputs"`
	Outputs        []string `json:"outputs" yaml:"outputs"`
	Doc            string   `json:"doc,omitempty" yaml:"doc,omitempty"`
	Statement      string   `json:"statement" yaml:"statement"`
}

// Catalog is a SQLite backed block catalog.
type Catalog struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// New creates a catalog. Call Open before use.
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{logger: logger}
}

// NewWithDB wraps an existing connection.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Catalog {
	c := New(logger)
	c.db = db
	return c
}

// Open connects to the catalog at path, creating parent directories as
// needed. Use MemoryPath for an in-memory catalog.
func (c *Catalog) Open(path string) error {
	dsn := MemoryPath
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create catalog directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	c.logger.Debug("opening catalog", "path", path)

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	// Each connection to :memory: is a separate database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping catalog: %w", err)
	}

	c.db = db
	c.path = path
	return nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying connection.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// BeginRun records the start of an indexing pass and returns its ID.
func (c *Catalog) BeginRun(ctx context.Context) (string, error) {
	if c.db == nil {
		return "", errNotOpen
	}

	id := uuid.New().String()
	c.logger.Debug("creating run", slog.String("id", id))

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run as finished with its totals.
func (c *Catalog) FinishRun(ctx context.Context, id string, files, blocks int) error {
	if c.db == nil {
		return errNotOpen
	}

	result, err := c.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files = ?, blocks = ? WHERE id = ?`,
		time.Now().UTC().UnixMilli(), files, blocks, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (c *Catalog) GetRun(ctx context.Context, id string) (*Run, error) {
	if c.db == nil {
		return nil, errNotOpen
	}

	var (
		run        = &Run{}
		startedAt  int64
		finishedAt sql.NullInt64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, files, blocks FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &startedAt, &finishedAt, &run.Files, &run.Blocks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		t := time.UnixMilli(finishedAt.Int64).UTC()
		run.FinishedAt = &t
	}
	return run, nil
}

// FileHash returns the stored content hash for path, or "" when the file has
// not been indexed.
func (c *Catalog) FileHash(ctx context.Context, path string) (string, error) {
	if c.db == nil {
		return "", errNotOpen
	}

	var hash string
	err := c.db.QueryRowContext(ctx, `SELECT hash FROM files WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get file hash: %w", err)
	}
	return hash, nil
}

// IndexFile stores the blocks of one file. When the stored hash equals hash
// nothing is written and skipped is true. Otherwise the file's previous
// blocks are replaced in a single transaction.
func (c *Catalog) IndexFile(ctx context.Context, runID, path, hash string, blocks []*compiler.Block) (skipped bool, err error) {
	if c.db == nil {
		return false, errNotOpen
	}

	existing, err := c.FileHash(ctx, path)
	if err != nil {
		return false, err
	}
	if existing == hash {
		c.logger.Debug("skipping unchanged file", "path", path)
		return true, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM blocks WHERE file_path = ?`, path); err != nil {
		return false, fmt.Errorf("failed to clear blocks for %s: %w", path, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO files (path, hash, run_id, indexed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, run_id = excluded.run_id, indexed_at = excluded.indexed_at`,
		path, hash, runID, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save file %s: %w", path, err)
	}

	for _, b := range blocks {
		rec := NewBlockRecord(path, b)
		inputs, implicit, outputs, encErr := encodeNames(rec)
		if encErr != nil {
			return false, encErr
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO blocks (file_path, line, name, operation, result, inputs, implicit_inputs, outputs, doc, statement)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.FilePath, rec.Line, rec.Name, rec.Operation, rec.Result,
			inputs, implicit, outputs, rec.Doc, rec.Statement,
		)
		if err != nil {
			return false, fmt.Errorf("failed to save block %s: %w", rec.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	c.logger.Debug("indexed file", "path", path, "hash", hash, "blocks", len(blocks))
	return false, nil
}

// RemoveFile deletes a file and its blocks.
func (c *Catalog) RemoveFile(ctx context.Context, path string) error {
	if c.db == nil {
		return errNotOpen
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE file_path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return tx.Commit()
}

// Files returns every indexed file path, sorted.
func (c *Catalog) Files(ctx context.Context) ([]string, error) {
	if c.db == nil {
		return nil, errNotOpen
	}

	rows, err := c.db.QueryContext(ctx, `SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

const selectBlocks = `SELECT file_path, line, name, operation, result, inputs, implicit_inputs, outputs, doc, statement FROM blocks`

// Blocks returns every stored block ordered by file and line.
func (c *Catalog) Blocks(ctx context.Context) ([]BlockRecord, error) {
	return c.queryBlocks(ctx, selectBlocks+` ORDER BY file_path, line`)
}

// BlocksNamed returns the stored blocks called name.
func (c *Catalog) BlocksNamed(ctx context.Context, name string) ([]BlockRecord, error) {
	return c.queryBlocks(ctx, selectBlocks+` WHERE name = ? ORDER BY file_path, line`, name)
}

func (c *Catalog) queryBlocks(ctx context.Context, query string, args ...any) ([]BlockRecord, error) {
	if c.db == nil {
		return nil, errNotOpen
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []BlockRecord
	for rows.Next() {
		var (
			rec                       BlockRecord
			inputs, implicit, outputs string
		)
		if err := rows.Scan(&rec.FilePath, &rec.Line, &rec.Name, &rec.Operation, &rec.Result,
			&inputs, &implicit, &outputs, &rec.Doc, &rec.Statement); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		if err := decodeNames(inputs, &rec.Inputs); err != nil {
			return nil, err
		}
		if err := decodeNames(implicit, &rec.ImplicitInputs); err != nil {
			return nil, err
		}
		if err := decodeNames(outputs, &rec.Outputs); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// NewBlockRecord flattens a parsed block for storage or display.
func NewBlockRecord(path string, b *compiler.Block) BlockRecord {
	outputs := make([]string, 0, len(b.OutputArgs))
	for _, a := range b.OutputArgs {
		outputs = append(outputs, a.Name)
	}
	return BlockRecord{
		FilePath:       path,
		Line:           b.Line,
		Name:           b.Name(),
		Operation:      string(b.Def.Op),
		Result:         string(b.Def.Result),
		Inputs:         append([]string{}, b.InputNames...),
		ImplicitInputs: append([]string{}, b.InputImplicitNames...),
		Outputs:        outputs,
		Doc:            b.Doc(),
		Statement:      b.Statement(""),
	}
}

func encodeNames(rec BlockRecord) (inputs, implicit, outputs string, err error) {
	enc := func(names []string) (string, error) {
		if names == nil {
			names = []string{}
		}
		data, err := json.Marshal(names)
		if err != nil {
			return "", fmt.Errorf("failed to encode names: %w", err)
		}
		return string(data), nil
	}
	if inputs, err = enc(rec.Inputs); err != nil {
		return
	}
	if implicit, err = enc(rec.ImplicitInputs); err != nil {
		return
	}
	outputs, err = enc(rec.Outputs)
	return
}

func decodeNames(data string, dst *[]string) error {
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("failed to decode names: %w", err)
	}
	return nil
}
