package compiler

import (
	"errors"
	"fmt"
)

// InvalidHeaderError reports a header line that is not a recognized
// argument form, or that lacks the comment marker.
type InvalidHeaderError struct {
	Source string // file name, may be empty
	Line   int    // 1-based line in Source, 0 when unknown
	Text   string // the offending header line
	Reason string
}

func (e *InvalidHeaderError) Error() string {
	return locate(e.Source, e.Line, fmt.Sprintf("invalid header %q: %s", e.Text, e.Reason))
}

func (e *InvalidHeaderError) setLocation(source string, line int) {
	e.Source, e.Line = source, line
}

// InvalidDefinitionError reports a malformed `:name NAME OP [RETURN]` line.
type InvalidDefinitionError struct {
	Source string
	Line   int
	Text   string
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	return locate(e.Source, e.Line, fmt.Sprintf("invalid definition %q: %s", e.Text, e.Reason))
}

func (e *InvalidDefinitionError) setLocation(source string, line int) {
	e.Source, e.Line = source, line
}

// InvariantKind names the invariant an InvariantError violated.
type InvariantKind string

// Invariant kinds.
const (
	InvariantIdentifier      InvariantKind = "identifier"
	InvariantSingleStatement InvariantKind = "single-statement"
	InvariantPartition       InvariantKind = "partition"
)

// InvariantError reports a block that violates a structural invariant.
// These are fatal for the block; Defect tells internal bugs apart from
// bad input.
type InvariantError struct {
	Kind    InvariantKind
	Source  string
	Line    int
	Message string
}

func (e *InvariantError) Error() string {
	return locate(e.Source, e.Line, fmt.Sprintf("invariant %s violated: %s", e.Kind, e.Message))
}

// Defect reports whether the violation can only come from a bug in this
// package rather than from user input.
func (e *InvariantError) Defect() bool {
	return e.Kind == InvariantPartition
}

func (e *InvariantError) setLocation(source string, line int) {
	if e.Source == "" && e.Line == 0 {
		e.Source, e.Line = source, line
	}
}

// IsInvariant reports whether err is, or wraps, an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// locatable is implemented by errors that can carry a source position.
type locatable interface {
	setLocation(source string, line int)
}

// withLocation fills in the source position of err when it supports one.
func withLocation(err error, source string, line int) error {
	var le locatable
	if errors.As(err, &le) {
		le.setLocation(source, line)
	}
	return err
}

func locate(source string, line int, msg string) string {
	switch {
	case source != "" && line > 0:
		return fmt.Sprintf("%s:%d: %s", source, line, msg)
	case source != "":
		return fmt.Sprintf("%s: %s", source, msg)
	case line > 0:
		return fmt.Sprintf("line %d: %s", line, msg)
	default:
		return msg
	}
}
