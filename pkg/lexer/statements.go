package lexer

import "github.com/leapstack-labs/baconql/pkg/token"

// Statement is the run of tokens between two semicolons.
type Statement struct {
	Tokens []token.Token
}

// Verb returns the leading keyword of the statement in upper case,
// or "" when the statement does not start with a keyword.
func (s Statement) Verb() string {
	if len(s.Tokens) == 0 || !token.IsKeyword(s.Tokens[0].Type) {
		return ""
	}
	return s.Tokens[0].Type.String()
}

// Placeholders returns the placeholder tokens of the statement in source order.
func (s Statement) Placeholders() []token.Token {
	var out []token.Token
	for _, tok := range s.Tokens {
		if tok.IsPlaceholder() {
			out = append(out, tok)
		}
	}
	return out
}

// Split tokenizes input and groups the tokens into statements. Semicolons
// terminate statements and are not part of them; runs with no tokens
// (comments and whitespace only, or a trailing semicolon) are dropped.
func Split(input string) []Statement {
	l := New(input)
	var (
		stmts   []Statement
		current []token.Token
	)
	flush := func() {
		if len(current) > 0 {
			stmts = append(stmts, Statement{Tokens: current})
			current = nil
		}
	}

	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			flush()
			return stmts
		case token.SEMICOLON:
			flush()
		default:
			current = append(current, tok)
		}
	}
}
