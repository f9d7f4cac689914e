// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/baconql/internal/cli/config"
	"github.com/leapstack-labs/baconql/internal/cli/output"
	basetestutil "github.com/leapstack-labs/baconql/internal/testutil"
)

// UsersSQL holds two valid blocks.
const UsersSQL = `-- Queries over the users table.

-- :name get_user select one
-- Fetch a user by id.
-- :input id int
SELECT id, name FROM users WHERE id = :id AND org_id = :org_id

-- :name rename_user update affected
-- :input id int
-- :input name str
UPDATE users SET name = :name WHERE id = :id
`

// OrdersSQL holds one valid block and one with an unknown result kind.
const OrdersSQL = `-- :name list_orders select many
SELECT * FROM orders WHERE user_id = :user_id

-- :name broken_orders select sometimes
SELECT 1
`

// SetupTestProject creates a temporary project with a sql directory holding
// users.sql, and returns its root.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	WriteSQL(t, tmpDir, "users.sql", UsersSQL)
	return tmpDir
}

// WriteSQL writes content to sql/name under root.
func WriteSQL(t *testing.T, root, name, content string) string {
	t.Helper()

	path := filepath.Join(root, config.DefaultSQLDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

// ProjectConfig returns a config for a project rooted at root, with the
// catalog under the project.
func ProjectConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.SQLDir = filepath.Join(root, config.DefaultSQLDir)
	cfg.CatalogPath = filepath.Join(root, config.DefaultCatalogFile)
	return cfg
}

// Context returns a context carrying cfg and a test logger, as the root
// command would set up.
func Context(t *testing.T, cfg *config.Config) context.Context {
	t.Helper()

	ctx := config.WithConfig(t.Context(), cfg)
	return context.WithValue(ctx, config.LoggerKey(), basetestutil.NewTestLogger(t))
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
