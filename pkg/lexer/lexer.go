// Package lexer tokenizes SQL text far enough to find named bind parameters,
// statement boundaries and statement verbs.
//
// It is not a validating SQL lexer: unknown characters become ILLEGAL tokens
// and unterminated literals run to the end of the input.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/baconql/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// Comments collected while skipping
	Comments []*token.Comment
}

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	var tok token.Token
	switch l.ch {
	case '+':
		tok = l.single(token.PLUS, pos)
	case '-':
		tok = l.single(token.MINUS, pos)
	case '*':
		tok = l.single(token.STAR, pos)
	case '/':
		tok = l.single(token.SLASH, pos)
	case '%':
		tok = l.single(token.PERCENT, pos)
	case '=':
		tok = l.single(token.EQ, pos)
	case '<':
		switch l.peekChar() {
		case '=':
			tok = l.double(token.LE, pos)
		case '>':
			tok = l.double(token.NE, pos)
		default:
			tok = l.single(token.LT, pos)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.double(token.GE, pos)
		} else {
			tok = l.single(token.GT, pos)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.double(token.NE, pos)
		} else {
			tok = l.single(token.ILLEGAL, pos)
		}
	case '|':
		if l.peekChar() == '|' {
			tok = l.double(token.DPIPE, pos)
		} else {
			tok = l.single(token.ILLEGAL, pos)
		}
	case '.':
		tok = l.single(token.DOT, pos)
	case ',':
		tok = l.single(token.COMMA, pos)
	case '(':
		tok = l.single(token.LPAREN, pos)
	case ')':
		tok = l.single(token.RPAREN, pos)
	case '[':
		tok = l.single(token.LBRACKET, pos)
	case ']':
		tok = l.single(token.RBRACKET, pos)
	case ';':
		tok = l.single(token.SEMICOLON, pos)
	case ':':
		tok = l.readColon(pos)
	case '\'':
		tok = token.Token{Type: token.STRING, Literal: l.readQuoted('\''), Pos: pos}
	case '"':
		tok = token.Token{Type: token.IDENT, Literal: l.readQuoted('"'), Pos: pos}
	case '`':
		tok = token.Token{Type: token.IDENT, Literal: l.readQuoted('`'), Pos: pos}
	case '$':
		if lit, ok := l.readDollarQuoted(); ok {
			tok = token.Token{Type: token.STRING, Literal: lit, Pos: pos}
		} else {
			tok = l.single(token.ILLEGAL, pos)
		}
	default:
		switch {
		case isIdentStart(l.ch):
			lit := l.readIdentifier()
			tok = token.Token{Type: token.LookupIdent(strings.ToLower(lit)), Literal: lit, Pos: pos}
		case isDigit(l.ch):
			tok = token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
		default:
			tok = l.single(token.ILLEGAL, pos)
		}
	}
	return tok
}

// single consumes one character as a token of the given type.
func (l *Lexer) single(t token.TokenType, pos token.Position) token.Token {
	lit := string(l.ch)
	l.readChar()
	return token.Token{Type: t, Literal: lit, Pos: pos}
}

// double consumes two characters as a token of the given type.
func (l *Lexer) double(t token.TokenType, pos token.Position) token.Token {
	start := l.pos
	l.readChar()
	l.readChar()
	return token.Token{Type: t, Literal: l.input[start:l.pos], Pos: pos}
}

// readColon handles ':' which may start a cast (::), a named placeholder
// (:name) or stand alone (slices, JSON paths). A colon directly after a word
// character, as in arr[lo:hi], never starts a placeholder.
func (l *Lexer) readColon(pos token.Position) token.Token {
	if l.peekChar() == ':' {
		return l.double(token.DCOLON, pos)
	}
	prev, _ := utf8.DecodeLastRuneInString(l.input[:l.pos])
	next, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	if (l.pos > 0 && isWordRune(prev)) || !(next == '_' || unicode.IsLetter(next)) {
		return l.single(token.COLON, pos)
	}

	start := l.pos
	l.readChar() // skip ':'
	l.readParamName()
	return token.Token{Type: token.PLACEHOLDER, Literal: l.input[start:l.pos], Pos: pos}
}

// readParamName reads the name of a placeholder: letters, digits and
// underscores only.
func (l *Lexer) readParamName() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isWordRune(r) {
			return
		}
		for range size {
			l.readChar()
		}
	}
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			l.collectLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Pos:  startPos,
	})
}

func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			break
		}
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startOffset:l.pos],
		Pos:  startPos,
	})
}

// readQuoted reads a literal delimited by quote, where a doubled quote
// is an escaped quote: 'it''s' -> it's
func (l *Lexer) readQuoted(quote byte) string {
	l.readChar() // skip opening quote

	var result strings.Builder
	for !l.atEOF() {
		if l.ch == quote {
			if l.peekChar() == quote {
				result.WriteByte(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			break
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return result.String()
}

// readDollarQuoted reads a PostgreSQL dollar-quoted string ($$...$$ or
// $tag$...$tag$). It reports false, consuming nothing, when the '$' does
// not open one (for example a positional parameter like $1).
func (l *Lexer) readDollarQuoted() (string, bool) {
	rest := l.input[l.pos:]
	end := strings.IndexByte(rest[1:], '$')
	if end < 0 {
		return "", false
	}
	tag := rest[:end+2]
	for i := 1; i < len(tag)-1; i++ {
		c := tag[i]
		if !(isIdentStart(c) || (i > 1 && isDigit(c))) {
			return "", false
		}
	}

	bodyStart := len(tag)
	closeIdx := strings.Index(rest[bodyStart:], tag)
	consume := len(rest)
	body := rest[bodyStart:]
	if closeIdx >= 0 {
		body = rest[bodyStart : bodyStart+closeIdx]
		consume = bodyStart + closeIdx + len(tag)
	}
	for i := 0; i < consume; i++ {
		l.readChar()
	}
	return body, true
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentStart(l.ch) || isDigit(l.ch) || l.ch == '$' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isIdentStart reports whether ch can start an identifier. Bytes of
// multi-byte UTF-8 sequences are accepted so non-ASCII names stay whole.
func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= utf8.RuneSelf || unicode.IsLetter(rune(ch))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
