package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// OperationKind is the category of database operation a block performs.
type OperationKind string

// Known operations.
const (
	OpSelect OperationKind = "select"
	OpInsert OperationKind = "insert"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
	OpExec   OperationKind = "exec" // any other statement (DDL, procedures)
)

var operations = map[string]OperationKind{
	"select": OpSelect,
	"insert": OpInsert,
	"update": OpUpdate,
	"delete": OpDelete,
	"exec":   OpExec,
}

// LookupOperation resolves an operation token such as "select" or ":select".
func LookupOperation(tok string) (OperationKind, error) {
	if op, ok := operations[strings.TrimPrefix(tok, ":")]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q, must be one of: %s", tok, strings.Join(sortedKeys(operations), ", "))
}

// Accepts reports whether a statement starting with verb (an upper case SQL
// keyword, or "" when the statement starts with something else) fits the
// operation. A WITH prefix is accepted for every operation.
func (op OperationKind) Accepts(verb string) bool {
	if op == OpExec || verb == "WITH" {
		return true
	}
	return strings.EqualFold(string(op), verb)
}

// ResultKind is the declared shape of a block's result. It selects the
// code generation template.
type ResultKind string

// Known result kinds.
const (
	ResultRaw      ResultKind = "raw"      // driver cursor, untouched
	ResultOne      ResultKind = "one"      // single row or nothing
	ResultMany     ResultKind = "many"     // list of rows
	ResultScalar   ResultKind = "scalar"   // first column of the first row
	ResultAffected ResultKind = "affected" // affected row count
	ResultNone     ResultKind = "none"     // nothing
)

// DefaultResult is the result token used when a definition omits one.
const DefaultResult = ":raw"

var results = map[string]ResultKind{
	"raw":      ResultRaw,
	"one":      ResultOne,
	"many":     ResultMany,
	"scalar":   ResultScalar,
	"affected": ResultAffected,
	"none":     ResultNone,
}

// LookupResult resolves a result token such as "one" or ":one".
func LookupResult(tok string) (ResultKind, error) {
	if rk, ok := results[strings.TrimPrefix(tok, ":")]; ok {
		return rk, nil
	}
	return "", fmt.Errorf("unknown result kind %q, must be one of: %s", tok, strings.Join(sortedKeys(results), ", "))
}

// Template returns the name of the code generation template for the kind.
func (rk ResultKind) Template() string {
	return "_result_" + string(rk) + ".py"
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
