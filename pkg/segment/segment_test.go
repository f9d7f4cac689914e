package segment

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/baconql/pkg/compiler"
)

const usersSQL = `-- users.sql
-- queries for the users table

-- :name get_user select one
-- :input id int
SELECT * FROM users WHERE id = :id


--:name add_user insert affected
INSERT INTO users (name) VALUES (:name)
-- :name count_users select scalar
SELECT count(*) FROM users
`

func TestSplit(t *testing.T) {
	blocks := Split("users.sql", usersSQL)
	require.Len(t, blocks, 3)

	assert.Equal(t, compiler.RawBlock{
		Source: "users.sql",
		Line:   4,
		Lines: []string{
			"-- :name get_user select one",
			"-- :input id int",
			"SELECT * FROM users WHERE id = :id",
		},
	}, blocks[0])
	assert.Equal(t, 9, blocks[1].Line)
	assert.Equal(t, []string{"--:name add_user insert affected", "INSERT INTO users (name) VALUES (:name)"}, blocks[1].Lines)
	assert.Equal(t, 11, blocks[2].Line)
	assert.Equal(t, []string{"-- :name count_users select scalar", "SELECT count(*) FROM users"}, blocks[2].Lines)
}

func TestSplit_ParsesCleanly(t *testing.T) {
	blocks, err := compiler.ParseAll(Split("users.sql", usersSQL))
	require.NoError(t, err)

	names := make([]string, 0, len(blocks))
	for _, b := range blocks {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"get_user", "add_user", "count_users"}, names)
}

func TestSplit_CRLF(t *testing.T) {
	blocks := Split("", "-- :name a select\r\nSELECT 1\r\n\r\n-- :name b select\r\nSELECT 2\r\n")
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"-- :name a select", "SELECT 1"}, blocks[0].Lines)
	assert.Equal(t, []string{"-- :name b select", "SELECT 2"}, blocks[1].Lines)
}

func TestSplit_NoBlocks(t *testing.T) {
	assert.Empty(t, Split("", ""))
	assert.Empty(t, Split("", "-- just a comment\nSELECT 1\n"))
}

func TestIsStart(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"-- :name foo select", true},
		{"--:name foo select", true},
		{"   --\t:name foo select", true},
		{"-- :name", true},
		{"-- :names foo select", false},
		{"-- :input id", false},
		{"SELECT ':name'", false},
		{"--- :name foo select", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStart(tt.line))
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestRead(t *testing.T) {
	blocks, err := Read("users.sql", strings.NewReader(usersSQL))
	require.NoError(t, err)
	assert.Len(t, blocks, 3)

	_, err = Read("broken.sql", failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.sql")
}
