package compiler

import (
	"strings"

	"github.com/leapstack-labs/baconql/pkg/ident"
)

// HeaderArgKind classifies a header line other than the definition.
type HeaderArgKind int

// Header argument kinds.
const (
	HeaderInput HeaderArgKind = iota + 1
	HeaderOutput
	HeaderDoc
)

func (k HeaderArgKind) String() string {
	switch k {
	case HeaderInput:
		return "input"
	case HeaderOutput:
		return "output"
	case HeaderDoc:
		return "doc"
	default:
		return "unknown"
	}
}

// Header markers.
const (
	CommentMarker  = "--"
	DefMarker      = ":name"
	InputMarker    = ":input"
	OutputMarker   = ":output"
	DocMarker      = ":doc"
	directiveSigil = ":"
)

// ArgContent is the name and optional value extracted from a header line.
// An empty Value means no value was given.
type ArgContent struct {
	Name  string
	Value string
}

// HeaderTypeAndContent classifies one de-commented header line:
//
//	:input NAME [VALUE...]
//	:output NAME [VALUE...]
//	:doc [TEXT...]
//	any text not starting with ':' (documentation)
//
// Anything else is an *InvalidHeaderError.
func HeaderTypeAndContent(line string) (HeaderArgKind, ArgContent, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, directiveSigil) {
		return HeaderDoc, ArgContent{Value: line}, nil
	}

	directive, rest := cutField(line)
	switch directive {
	case InputMarker:
		content, err := namedContent(line, rest)
		return HeaderInput, content, err
	case OutputMarker:
		content, err := namedContent(line, rest)
		return HeaderOutput, content, err
	case DocMarker:
		return HeaderDoc, ArgContent{Value: rest}, nil
	case DefMarker:
		return 0, ArgContent{}, &InvalidHeaderError{Text: line, Reason: "the definition must be the first header line"}
	default:
		return 0, ArgContent{}, &InvalidHeaderError{
			Text:   line,
			Reason: "unknown directive " + directive + ", expected one of " + InputMarker + ", " + OutputMarker + ", " + DocMarker,
		}
	}
}

// namedContent parses "NAME [VALUE...]".
func namedContent(line, rest string) (ArgContent, error) {
	name, value := cutField(rest)
	if name == "" {
		return ArgContent{}, &InvalidHeaderError{Text: line, Reason: "missing argument name"}
	}
	if !ident.IsValid(name) {
		return ArgContent{}, &InvalidHeaderError{Text: line, Reason: "argument name " + name + " is not a valid identifier"}
	}
	return ArgContent{Name: name, Value: value}, nil
}

// cutField splits s into its first whitespace separated field and the
// trimmed remainder.
func cutField(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, isSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\v' || r == '\f' || r == '\r' || r == '\n'
}

// decomment strips surrounding whitespace and the comment marker, plus any
// whitespace right after it.
func decomment(line string) (string, error) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, CommentMarker) {
		return "", &InvalidHeaderError{Text: s, Reason: "header lines must start with " + CommentMarker}
	}
	return strings.TrimLeftFunc(s[len(CommentMarker):], isSpace), nil
}
