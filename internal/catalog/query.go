package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// QueryResult holds the rows of an ad hoc query. Values are converted to
// strings, with NULL as nil.
type QueryResult struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// ColumnInfo describes one column of a catalog table or view.
type ColumnInfo struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	PK       bool   `json:"pk" yaml:"pk"`
}

// OpenReadOnly connects to an existing catalog without write access.
func (c *Catalog) OpenReadOnly(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("catalog not found at %s (run 'baconql index' first): %w", path, err)
	}

	db, err := sql.Open(DriverName, "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping catalog: %w", err)
	}

	c.db = db
	c.path = path
	return nil
}

// Query runs query and collects every row.
func (c *Catalog) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	if c.db == nil {
		return nil, errNotOpen
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &QueryResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Tables lists the catalog's tables and views, excluding SQLite and
// migration bookkeeping.
func (c *Catalog) Tables(ctx context.Context, viewsOnly bool) (*QueryResult, error) {
	query := `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite_%'
		AND name NOT LIKE 'goose_%'
	`
	if viewsOnly {
		query += ` AND type = 'view'`
	}
	query += ` ORDER BY type DESC, name`
	return c.Query(ctx, query)
}

// Columns describes the columns of table, which may also be a view.
func (c *Catalog) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	if c.db == nil {
		return nil, errNotOpen
	}

	rows, err := c.db.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []ColumnInfo
	for rows.Next() {
		var (
			col     ColumnInfo
			notNull int
			pk      int
			dflt    sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		col.Nullable = notNull == 0
		col.Default = dflt.String
		col.PK = pk > 0
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("table or view %q not found", table)
	}
	return cols, nil
}
