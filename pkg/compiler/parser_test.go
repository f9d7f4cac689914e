package compiler

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHeader(t *testing.T) {
	lines := []string{
		"-- :name foo select",
		"  -- :input id int",
		"SELECT * FROM t WHERE id = :id",
		"-- trailing comment stays in the body",
	}

	header, body := splitHeader(lines)

	assert.Equal(t, lines[:2], header)
	assert.Equal(t, lines[2:], body)
}

func TestParseBlock(t *testing.T) {
	raw := RawBlock{Lines: []string{
		"-- :name foo select",
		"-- :input id int",
		"SELECT * FROM t WHERE id = :id",
	}}

	b, err := ParseBlock(raw)
	require.NoError(t, err)

	assert.Equal(t, Definition{Name: "foo", Op: OpSelect, Result: ResultRaw}, b.Def)
	assert.Equal(t, []Arg{{Kind: HeaderInput, Name: "id", Value: "int"}}, b.InputArgs)
	assert.Empty(t, b.OutputArgs)
	assert.Empty(t, b.Docs)
	assert.Equal(t, []string{"SELECT * FROM t WHERE id = :id"}, b.Body)
	assert.Equal(t, []string{"id"}, b.InputNames)
	assert.Empty(t, b.InputImplicitNames)
}

func TestParseBlock_FullHeader(t *testing.T) {
	raw := RawBlock{
		Source: "users.sql",
		Line:   10,
		Lines: []string{
			"--:name find_users select many",
			"-- Find users by name.",
			"-- :doc Matches are case sensitive.",
			"-- :input name str",
			"-- :output id int",
			"-- :output name str",
			"SELECT id, name",
			"FROM users",
			"WHERE name = :name AND org_id = :org_id",
		},
	}

	b, err := ParseBlock(raw)
	require.NoError(t, err)

	assert.Equal(t, "find_users", b.Name())
	assert.Equal(t, ResultMany, b.Def.Result)
	assert.Equal(t, "Find users by name.\nMatches are case sensitive.", b.Doc())
	assert.Equal(t, []string{"name"}, b.InputNames)
	assert.Equal(t, []string{"org_id"}, b.InputImplicitNames)
	require.Len(t, b.OutputArgs, 2)
	assert.Equal(t, "id", b.OutputArgs[0].Name)
	assert.Equal(t, "name", b.OutputArgs[1].Name)
	assert.Equal(t, raw.Lines[6:], b.Body)
	assert.Equal(t, "users.sql", b.Source)
	assert.Equal(t, 10, b.Line)
}

func TestParseBlock_Deterministic(t *testing.T) {
	raw := RawBlock{Lines: []string{
		"-- :name foo select one",
		"-- :input b",
		"SELECT * FROM t WHERE c = :c AND b = :b AND a = :a",
	}}

	first, err := ParseBlock(raw)
	require.NoError(t, err)
	second, err := ParseBlock(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseBlock_BodyIsCopied(t *testing.T) {
	lines := []string{
		"-- :name foo select",
		"SELECT * FROM t WHERE id = :id",
	}

	b, err := ParseBlock(RawBlock{Lines: lines})
	require.NoError(t, err)

	lines[1] = "DELETE FROM t"
	assert.Equal(t, []string{"SELECT * FROM t WHERE id = :id"}, b.Body)
	assert.Equal(t, "SELECT * FROM t WHERE id = :id", b.Statement(""))
}

func TestParseBlock_Errors(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawBlock
		check    func(t *testing.T, err error)
		location string
	}{
		{
			name: "no header",
			raw:  RawBlock{Source: "q.sql", Line: 3, Lines: []string{"SELECT 1"}},
			check: func(t *testing.T, err error) {
				var he *InvalidHeaderError
				require.True(t, errors.As(err, &he))
				assert.Equal(t, "SELECT 1", he.Text)
			},
			location: "q.sql:3: ",
		},
		{
			name: "empty block",
			raw:  RawBlock{},
			check: func(t *testing.T, err error) {
				var he *InvalidHeaderError
				require.True(t, errors.As(err, &he))
			},
		},
		{
			name: "definition arity",
			raw:  RawBlock{Source: "q.sql", Line: 1, Lines: []string{"-- :name foo", "SELECT 1"}},
			check: func(t *testing.T, err error) {
				var de *InvalidDefinitionError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, ":name foo", de.Text)
			},
			location: "q.sql:1: ",
		},
		{
			name: "definition marker missing",
			raw:  RawBlock{Lines: []string{"-- select foo bar", "SELECT 1"}},
			check: func(t *testing.T, err error) {
				var de *InvalidDefinitionError
				require.True(t, errors.As(err, &de))
			},
		},
		{
			name: "bad arg line",
			raw:  RawBlock{Source: "q.sql", Line: 20, Lines: []string{"-- :name foo select", "-- :input", "SELECT 1"}},
			check: func(t *testing.T, err error) {
				var he *InvalidHeaderError
				require.True(t, errors.As(err, &he))
				assert.Equal(t, 21, he.Line)
				assert.Equal(t, ":input", he.Text)
			},
			location: "q.sql:21: ",
		},
		{
			name: "invalid name",
			raw:  RawBlock{Source: "q.sql", Line: 5, Lines: []string{"-- :name get-user select", "SELECT 1"}},
			check: func(t *testing.T, err error) {
				var ie *InvariantError
				require.True(t, errors.As(err, &ie))
				assert.Equal(t, InvariantIdentifier, ie.Kind)
			},
			location: "q.sql:5: ",
		},
		{
			name: "two statements",
			raw:  RawBlock{Source: "q.sql", Line: 5, Lines: []string{"-- :name foo exec", "DELETE FROM a;", "DELETE FROM b"}},
			check: func(t *testing.T, err error) {
				var ie *InvariantError
				require.True(t, errors.As(err, &ie))
				assert.Equal(t, InvariantSingleStatement, ie.Kind)
				assert.Equal(t, 6, ie.Line)
			},
			location: "q.sql:6: ",
		},
		{
			name: "header only",
			raw:  RawBlock{Lines: []string{"-- :name foo select"}},
			check: func(t *testing.T, err error) {
				assert.True(t, IsInvariant(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlock(tt.raw)
			require.Error(t, err)
			assert.Nil(t, b)
			tt.check(t, err)
			if tt.location != "" {
				assert.Contains(t, err.Error(), tt.location)
			}
		})
	}
}

func testRaws() []RawBlock {
	return []RawBlock{
		{Lines: []string{"-- :name first select", "SELECT :a"}},
		{Lines: []string{"-- :name second insert affected", "INSERT INTO t VALUES (:b)"}},
	}
}

func TestParse_PreservesOrder(t *testing.T) {
	var names []string
	for b, err := range Parse(slices.Values(testRaws())) {
		require.NoError(t, err)
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"first", "second"}, names)
}

func TestParse_ReportsErrorsPerBlock(t *testing.T) {
	raws := []RawBlock{
		{Lines: []string{"-- :name ok select", "SELECT 1"}},
		{Lines: []string{"-- :name broken", "SELECT 1"}},
		{Lines: []string{"-- :name also_ok select", "SELECT 2"}},
	}

	var (
		names []string
		errs  int
	)
	for b, err := range Parse(slices.Values(raws)) {
		if err != nil {
			assert.Nil(t, b)
			errs++
			continue
		}
		names = append(names, b.Name())
	}

	assert.Equal(t, []string{"ok", "also_ok"}, names)
	assert.Equal(t, 1, errs)
}

func TestParse_IsLazy(t *testing.T) {
	pulled := 0
	source := func(yield func(RawBlock) bool) {
		for _, raw := range testRaws() {
			pulled++
			if !yield(raw) {
				return
			}
		}
	}

	for range Parse(source) {
		break
	}
	assert.Equal(t, 1, pulled)
}

func TestParse_SinglePassSource(t *testing.T) {
	ch := make(chan RawBlock, 2)
	for _, raw := range testRaws() {
		ch <- raw
	}
	close(ch)

	source := func(yield func(RawBlock) bool) {
		for raw := range ch {
			if !yield(raw) {
				return
			}
		}
	}
	seq := Parse(source)

	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 2, count)

	count = 0
	for range seq {
		count++
	}
	assert.Equal(t, 0, count, "a drained source yields nothing the second time")
}

func TestParseAll(t *testing.T) {
	blocks, err := ParseAll(testRaws())
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "first", blocks[0].Name())
	assert.Equal(t, []string{"a"}, blocks[0].InputImplicitNames)
	assert.Equal(t, "second", blocks[1].Name())
	assert.Equal(t, ResultAffected, blocks[1].Def.Result)

	raws := append(testRaws(), RawBlock{Lines: []string{"-- :name x y", "SELECT 1"}})
	_, err = ParseAll(raws)
	assert.Error(t, err)
}
