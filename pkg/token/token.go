// Package token defines the token types produced by the SQL lexer.
//
// The vocabulary is deliberately small: baconql never builds a syntax tree,
// it only needs to find bind parameters, statement boundaries and the leading
// verb of a statement.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT       // identifier or "quoted identifier"
	NUMBER      // 123, 45.67, 1e10
	STRING      // 'hello'
	PLACEHOLDER // :name

	// Operators and punctuation
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	DPIPE     // ||
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	COLON     // :
	DCOLON    // ::
	SEMICOLON // ;

	// Keywords (alphabetical)
	AND
	AS
	BY
	CREATE
	DELETE
	DROP
	FROM
	GROUP
	IN
	INSERT
	INTO
	IS
	JOIN
	LIMIT
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	RETURNING
	SELECT
	SET
	UPDATE
	VALUES
	WHERE
	WITH
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:         "EOF",
	ILLEGAL:     "ILLEGAL",
	IDENT:       "IDENT",
	NUMBER:      "NUMBER",
	STRING:      "STRING",
	PLACEHOLDER: "PLACEHOLDER",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	DPIPE:     "||",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COLON:     ":",
	DCOLON:    "::",
	SEMICOLON: ";",

	AND:       "AND",
	AS:        "AS",
	BY:        "BY",
	CREATE:    "CREATE",
	DELETE:    "DELETE",
	DROP:      "DROP",
	FROM:      "FROM",
	GROUP:     "GROUP",
	IN:        "IN",
	INSERT:    "INSERT",
	INTO:      "INTO",
	IS:        "IS",
	JOIN:      "JOIN",
	LIMIT:     "LIMIT",
	NOT:       "NOT",
	NULL:      "NULL",
	OFFSET:    "OFFSET",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	RETURNING: "RETURNING",
	SELECT:    "SELECT",
	SET:       "SET",
	UPDATE:    "UPDATE",
	VALUES:    "VALUES",
	WHERE:     "WHERE",
	WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"and":       AND,
	"as":        AS,
	"by":        BY,
	"create":    CREATE,
	"delete":    DELETE,
	"drop":      DROP,
	"from":      FROM,
	"group":     GROUP,
	"in":        IN,
	"insert":    INSERT,
	"into":      INTO,
	"is":        IS,
	"join":      JOIN,
	"limit":     LIMIT,
	"not":       NOT,
	"null":      NULL,
	"offset":    OFFSET,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"returning": RETURNING,
	"select":    SELECT,
	"set":       SET,
	"update":    UPDATE,
	"values":    VALUES,
	"where":     WHERE,
	"with":      WITH,
}

// LookupIdent returns the keyword token type for a lowercase identifier,
// or IDENT when it is not a keyword.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= AND && t <= WITH
}

// IsOperator returns true if the token type is an operator or punctuation.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= SEMICOLON
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// IsPlaceholder reports whether the token is a named bind parameter.
func (t Token) IsPlaceholder() bool {
	return t.Type == PLACEHOLDER
}

// ParamName returns the placeholder name without its sigil.
// It returns "" for any other token.
func (t Token) ParamName() string {
	if t.Type != PLACEHOLDER || len(t.Literal) < 2 {
		return ""
	}
	return t.Literal[1:]
}
