package loader

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/baconql/internal/testutil"
	"github.com/leapstack-labs/baconql/pkg/compiler"
)

const goodSQL = `-- :name get_user select one
-- :input id int
SELECT * FROM users WHERE id = :id

-- :name delete_user delete affected
DELETE FROM users WHERE id = :id
`

const mixedSQL = `-- :name ok select
SELECT 1

-- :name broken select
-- :bogus x
SELECT 2

-- :name two exec
DELETE FROM a; DELETE FROM b
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.sql", goodSQL)

	l := New(WithLogger(testutil.NewTestLogger(t)))
	r, err := l.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, r.Path)
	assert.Len(t, r.Hash, 16)
	assert.Equal(t, Hash([]byte(goodSQL)), r.Hash)
	assert.False(t, r.HasErrors())
	require.Len(t, r.Blocks, 2)
	assert.Equal(t, "get_user", r.Blocks[0].Name())
	assert.Equal(t, 1, r.Blocks[0].Line)
	assert.Equal(t, "delete_user", r.Blocks[1].Name())
	assert.Equal(t, 5, r.Blocks[1].Line)
	assert.Equal(t, path, r.Blocks[1].Source)
}

func TestLoadFile_CollectsBlockErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mixed.sql", mixedSQL)

	r, err := New().LoadFile(path)
	require.NoError(t, err)

	require.Len(t, r.Blocks, 1)
	assert.Equal(t, "ok", r.Blocks[0].Name())
	require.Len(t, r.Errors, 2)
	assert.True(t, r.HasErrors())

	var he *compiler.InvalidHeaderError
	require.True(t, errors.As(r.Errors[0], &he))
	assert.Equal(t, 5, he.Line)

	assert.True(t, compiler.IsInvariant(r.Errors[1]))
}

func TestLoadFile_WarnsOnVerbMismatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "q.sql", "-- :name sneaky select\nDELETE FROM users\n")
	logger, buf := testutil.NewCaptureLogger(slog.LevelWarn)

	r, err := New(WithLogger(logger)).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, r.Blocks, 1)

	out := buf.String()
	assert.Contains(t, out, "statement does not match declared operation")
	assert.Contains(t, out, "name=sneaky")
	assert.Contains(t, out, "verb=DELETE")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := New().LoadFile(filepath.Join(t.TempDir(), "nope.sql"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestHash_Stable(t *testing.T) {
	assert.Equal(t, Hash([]byte("abc")), Hash([]byte("abc")))
	assert.NotEqual(t, Hash([]byte("abc")), Hash([]byte("abd")))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.sql", goodSQL)
	writeFile(t, dir, "a.sql", goodSQL)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "nested/c.sql", goodSQL)
	writeFile(t, dir, ".hidden/d.sql", goodSQL)
	writeFile(t, dir, "scratch_tmp.sql", goodSQL)

	l := New(WithExclude("*_tmp.sql"))
	files, err := l.Expand(dir, filepath.Join(dir, "a.sql"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.sql"),
		filepath.Join(dir, "b.sql"),
		filepath.Join(dir, "nested", "c.sql"),
	}, files)
}

func TestExpand_ExplicitFileKept(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "queries.txt", goodSQL)

	files, err := New().Expand(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestExpand_MissingPath(t *testing.T) {
	_, err := New().Expand(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadPaths_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.sql", "b.sql", "c.sql", "d.sql", "e.sql", "f.sql"}
	for _, name := range names {
		writeFile(t, dir, name, goodSQL)
	}

	l := New(WithConcurrency(3), WithLogger(testutil.NewTestLogger(t)))
	results, err := l.LoadPaths(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, len(names))

	for i, name := range names {
		assert.Equal(t, filepath.Join(dir, name), results[i].Path)
		assert.Len(t, results[i].Blocks, 2)
	}
}

func TestLoadPaths_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sql", goodSQL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().LoadPaths(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Options(t *testing.T) {
	l := New(WithConcurrency(0), WithLogger(nil))
	assert.Equal(t, DefaultConcurrency, l.concurrency)
	assert.NotNil(t, l.logger)

	l = New(WithConcurrency(9))
	assert.Equal(t, 9, l.concurrency)
}
