package token

import "strings"

// CommentKind distinguishes line vs block comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // -- comment
	BlockComment                    // /* comment */
)

// Comment is a SQL comment skipped by the lexer.
type Comment struct {
	Kind CommentKind
	Text string // includes delimiters (-- or /* */)
	Pos  Position
}

// Body returns the comment text without its delimiters.
func (c *Comment) Body() string {
	switch c.Kind {
	case LineComment:
		return strings.TrimSpace(strings.TrimPrefix(c.Text, "--"))
	default:
		s := strings.TrimPrefix(c.Text, "/*")
		s = strings.TrimSuffix(s, "*/")
		return strings.TrimSpace(s)
	}
}
