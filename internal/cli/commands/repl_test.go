package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/baconql/internal/catalog"
	"github.com/leapstack-labs/baconql/internal/cli/testutil"
	"github.com/leapstack-labs/baconql/pkg/compiler"
	"github.com/leapstack-labs/baconql/pkg/segment"
)

func feed(s replSession, lines ...string) bool {
	for _, line := range lines {
		if !s.handleLine(context.Background(), line) {
			return false
		}
	}
	return true
}

func TestBlockSession(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	s := newBlockSession(tr.Renderer)

	require.True(t, feed(s,
		"-- :name get_user select one",
		"-- :input id int",
		"SELECT * FROM users WHERE id = :id AND org = :org",
	))
	assert.True(t, s.pending())
	assert.Empty(t, tr.Output())

	require.True(t, feed(s, ""))
	assert.False(t, s.pending())

	out := tr.Output()
	assert.Contains(t, out, "## get_user")
	assert.Contains(t, out, "- **Implicit inputs:** org")
	assert.Contains(t, out, "- **Location:** <repl>:1")
	testutil.AssertValidMarkdown(t, out)
	assert.Empty(t, tr.ErrorOutput())
}

func TestBlockSession_Errors(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	s := newBlockSession(tr.Renderer)

	require.True(t, feed(s, "-- :name foo", "SELECT 1", ""))
	assert.Contains(t, tr.ErrorOutput(), "<repl>:1: ")
	assert.Empty(t, tr.Output())
	assert.False(t, s.pending())

	tr.Reset()
	require.True(t, feed(s, "-- :name foo select", "INSERT INTO t VALUES (1)", ""))
	assert.Contains(t, tr.Output(), "## foo")
	assert.Contains(t, tr.ErrorOutput(), "declared select but statement starts with INSERT")
}

func TestBlockSession_Commands(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	s := newBlockSession(tr.Renderer)

	assert.True(t, feed(s, ".help"))
	assert.Contains(t, tr.Output(), ".clear")

	assert.True(t, feed(s, ".bogus"))
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .bogus")

	require.True(t, feed(s, "-- :name foo select"))
	assert.True(t, s.pending())
	s.reset()
	assert.False(t, s.pending())

	require.True(t, feed(s, "-- :name foo select"))
	require.True(t, feed(s, ""), "a blank line ends the block")
	assert.True(t, feed(s, ".clear"))

	assert.False(t, feed(s, ".quit"))
	assert.False(t, feed(s, ".EXIT"))
}

func newIndexedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	ctx := context.Background()

	cat := catalog.New(nil)
	require.NoError(t, cat.Open(catalog.MemoryPath))
	require.NoError(t, cat.Migrate())
	t.Cleanup(func() { _ = cat.Close() })

	blocks, err := compiler.ParseAll(segment.Split("users.sql", testutil.UsersSQL))
	require.NoError(t, err)
	runID, err := cat.BeginRun(ctx)
	require.NoError(t, err)
	_, err = cat.IndexFile(ctx, runID, "users.sql", "h1", blocks)
	require.NoError(t, err)
	return cat
}

func TestQuerySession(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	s := newQuerySession(tr.Renderer, newIndexedCatalog(t))

	require.True(t, feed(s, "SELECT name, operation"))
	assert.True(t, s.pending())
	require.True(t, feed(s, "FROM blocks ORDER BY name;"))
	assert.False(t, s.pending())

	out := tr.Output()
	assert.Contains(t, out, "get_user")
	assert.Contains(t, out, "rename_user")
	assert.Contains(t, out, "(2 rows)")
	assert.Empty(t, tr.ErrorOutput())

	tr.Reset()
	require.True(t, feed(s, "SELECT * FROM nope;"))
	assert.Contains(t, tr.ErrorOutput(), "query failed")
}

func TestQuerySession_Commands(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	s := newQuerySession(tr.Renderer, newIndexedCatalog(t))

	require.True(t, feed(s, ".views"))
	assert.Contains(t, tr.Output(), "v_blocks")
	assert.NotContains(t, tr.Output(), "runs")

	tr.Reset()
	require.True(t, feed(s, ".schema blocks"))
	assert.Contains(t, tr.Output(), "implicit_inputs")

	tr.Reset()
	require.True(t, feed(s, ".schema"))
	assert.Contains(t, tr.ErrorOutput(), "Usage: .schema <table>")

	tr.Reset()
	require.True(t, feed(s, ".schema nope"))
	assert.Contains(t, tr.ErrorOutput(), "not found")

	assert.False(t, feed(s, ".quit"))
}

func TestQuerySession_Completions(t *testing.T) {
	s := newQuerySession(testutil.NewTestRendererMarkdown().Renderer, newIndexedCatalog(t))

	items := s.completions(context.Background())
	assert.Contains(t, items, ".schema")
	assert.Contains(t, items, "blocks")
	assert.Contains(t, items, "v_blocks")
}

func TestHistoryFile(t *testing.T) {
	assert.Empty(t, historyFile(catalog.MemoryPath, "h"))
	assert.Equal(t, ".baconql/h", historyFile(".baconql/catalog.db", "h"))
}
