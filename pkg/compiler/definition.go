package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/baconql/pkg/ident"
)

// Definition is the parsed `:name NAME OP [RETURN]` line of a block.
type Definition struct {
	Name   string
	Op     OperationKind
	Result ResultKind
}

// NewDefinition validates name and resolves the operation and result tokens.
func NewDefinition(name, op, result string) (Definition, error) {
	if !ident.IsValid(name) {
		return Definition{}, &InvariantError{
			Kind:    InvariantIdentifier,
			Message: fmt.Sprintf("name %q should be a valid Python identifier", name),
		}
	}

	opKind, err := LookupOperation(op)
	if err != nil {
		return Definition{}, &InvalidDefinitionError{Reason: err.Error()}
	}
	resultKind, err := LookupResult(result)
	if err != nil {
		return Definition{}, &InvalidDefinitionError{Reason: err.Error()}
	}

	return Definition{Name: name, Op: opKind, Result: resultKind}, nil
}

// ParseDefinition parses a de-commented definition line.
func ParseDefinition(line string) (Definition, error) {
	params := strings.Fields(line)

	if len(params) == 0 || params[0] != DefMarker {
		return Definition{}, &InvalidDefinitionError{
			Text:   line,
			Reason: "first line of header should be a definition `" + DefMarker + " NAME OPERATION [RETURN]'",
		}
	}
	params = params[1:]

	var name, op, ret string
	switch len(params) {
	case 2:
		name, op, ret = params[0], params[1], DefaultResult
	case 3:
		name, op, ret = params[0], params[1], params[2]
	default:
		return Definition{}, &InvalidDefinitionError{
			Text:   line,
			Reason: fmt.Sprintf("expected the form `NAME OPERATION [RETURN]', got %d fields", len(params)),
		}
	}

	def, err := NewDefinition(name, op, ret)
	if err != nil {
		var de *InvalidDefinitionError
		if errors.As(err, &de) {
			de.Text = line
		}
		return Definition{}, err
	}
	return def, nil
}
