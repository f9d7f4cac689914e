package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTestRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"auto", "text", "markdown", "json", "yaml", "JSON"} {
		m, err := ParseMode(s)
		require.NoError(t, err, s)
		assert.Equal(t, Mode(strings.ToLower(s)), m)
	}

	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	_, err = ParseMode("csv")
	assert.Error(t, err)
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeJSON, true, ModeJSON},
		{ModeYAML, false, ModeYAML},
	}

	for _, tt := range tests {
		r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode=%q tty=%v", tt.mode, tt.isTTY)
	}
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeAuto, false)

	r.Header(1, "Blocks")
	r.StatusLine("users.sql", "success", "2 blocks")
	r.Success("done")
	r.Warning("careful")
	r.Muted("note")

	got := out.String()
	assert.Contains(t, got, "# Blocks\n")
	assert.Contains(t, got, "- ✓ `users.sql` 2 blocks")
	assert.Contains(t, got, "- ✓ done")
	assert.Contains(t, got, "_note_")
	assert.Contains(t, errOut.String(), "- ! careful")
	assert.False(t, ansiPattern.MatchString(got+errOut.String()))
}

func TestRenderer_TextWithoutTTYHasNoANSI(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)

	r.Header(1, "Blocks")
	r.StatusLine("users.sql", "error", "1 error")
	r.Error("failed")

	assert.Contains(t, out.String(), "Blocks")
	assert.Contains(t, out.String(), "✗ users.sql 1 error")
	assert.Contains(t, errOut.String(), "✗ failed")
	assert.False(t, ansiPattern.MatchString(out.String()+errOut.String()))
}

func TestRenderer_Table(t *testing.T) {
	header := []string{"Name", "Operation"}
	rows := [][]string{{"get_user", "select"}, {"add_user", "insert"}}

	r, out, _ := newTestRenderer(ModeMarkdown, false)
	r.Table(header, rows)
	assert.Contains(t, strings.ToLower(out.String()), "| name | operation |")
	assert.Contains(t, out.String(), "| get_user | select |")

	r, out, _ = newTestRenderer(ModeText, false)
	r.Table(header, rows)
	assert.Contains(t, out.String(), "get_user")
	assert.Contains(t, out.String(), "┌")
}

func TestRenderer_Structured(t *testing.T) {
	v := map[string]any{"name": "get_user", "inputs": []string{"id"}}

	r, out, _ := newTestRenderer(ModeJSON, false)
	ok, err := r.Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"get_user","inputs":["id"]}`, out.String())

	r, out, _ = newTestRenderer(ModeYAML, false)
	ok, err = r.Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.YAMLEq(t, "name: get_user\ninputs: [id]\n", out.String())

	r, out, _ = newTestRenderer(ModeText, true)
	ok, err = r.Structured(v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Title", FormatHeader(2, "Title"))
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "- **Result:** one", FormatKeyValue("Result", "one"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
}
