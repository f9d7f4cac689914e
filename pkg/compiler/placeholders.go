package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/baconql/pkg/lexer"
)

// GatherPlaceholders returns the sorted, de-duplicated names of the named
// bind parameters (`:name`) used in body. The body must hold exactly one
// SQL statement.
func GatherPlaceholders(body []string) ([]string, error) {
	stmt, err := singleStatement(body)
	if err != nil {
		return nil, err
	}
	return placeholderNames(stmt), nil
}

func placeholderNames(stmt lexer.Statement) []string {
	seen := make(map[string]bool)
	var names []string
	for _, tok := range stmt.Placeholders() {
		name := tok.ParamName()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func singleStatement(body []string) (lexer.Statement, error) {
	stmts := lexer.Split(strings.Join(body, "\n"))
	if len(stmts) != 1 {
		return lexer.Statement{}, &InvariantError{
			Kind:    InvariantSingleStatement,
			Message: fmt.Sprintf("body must hold exactly one SQL statement, found %d", len(stmts)),
		}
	}
	return stmts[0], nil
}
