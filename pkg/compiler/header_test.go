package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderTypeAndContent(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    HeaderArgKind
		content ArgContent
	}{
		{"input with type", ":input id int", HeaderInput, ArgContent{Name: "id", Value: "int"}},
		{"input without value", ":input id", HeaderInput, ArgContent{Name: "id"}},
		{"input value keeps spaces", ":input ids list of int", HeaderInput, ArgContent{Name: "ids", Value: "list of int"}},
		{"input extra whitespace", "  :input \t id   int  ", HeaderInput, ArgContent{Name: "id", Value: "int"}},
		{"output", ":output total int", HeaderOutput, ArgContent{Name: "total", Value: "int"}},
		{"output without value", ":output total", HeaderOutput, ArgContent{Name: "total"}},
		{"explicit doc", ":doc Fetch a user.", HeaderDoc, ArgContent{Value: "Fetch a user."}},
		{"empty explicit doc", ":doc", HeaderDoc, ArgContent{}},
		{"plain text doc", "Fetch a user by id.", HeaderDoc, ArgContent{Value: "Fetch a user by id."}},
		{"empty line doc", "", HeaderDoc, ArgContent{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, content, err := HeaderTypeAndContent(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.content, content)
		})
	}
}

func TestHeaderTypeAndContent_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		errSubstr string
	}{
		{"unknown directive", ":param id", "unknown directive :param"},
		{"near miss directive", ":inputs id", "unknown directive :inputs"},
		{"missing input name", ":input", "missing argument name"},
		{"missing output name", ":output   ", "missing argument name"},
		{"invalid input name", ":input 1st int", "not a valid identifier"},
		{"keyword input name", ":input class str", "not a valid identifier"},
		{"definition not first", ":name foo select", "must be the first header line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := HeaderTypeAndContent(tt.line)
			require.Error(t, err)

			var he *InvalidHeaderError
			require.True(t, errors.As(err, &he), "expected InvalidHeaderError, got %T", err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.NotEmpty(t, he.Text)
		})
	}
}

func TestDecomment(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"-- :name foo select", ":name foo select"},
		{"--:name foo select", ":name foo select"},
		{"   --   :input id int  ", ":input id int"},
		{"--", ""},
		{"--- triple", "- triple"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := decomment(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecomment_MissingMarker(t *testing.T) {
	_, err := decomment("select foo bar")

	var he *InvalidHeaderError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "select foo bar", he.Text)
	assert.Contains(t, err.Error(), "must start with --")
}

func TestParseArg(t *testing.T) {
	arg, err := ParseArg(":input id int")
	require.NoError(t, err)

	assert.Equal(t, Arg{Kind: HeaderInput, Name: "id", Value: "int"}, arg)
	assert.True(t, arg.IsInput())
	assert.False(t, arg.IsOutput())
	assert.False(t, arg.IsDoc())
}

func TestHeaderArgKind_String(t *testing.T) {
	assert.Equal(t, "input", HeaderInput.String())
	assert.Equal(t, "output", HeaderOutput.String())
	assert.Equal(t, "doc", HeaderDoc.String())
	assert.Equal(t, "unknown", HeaderArgKind(0).String())
}
