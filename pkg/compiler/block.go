package compiler

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Block is one fully parsed SQL unit, ready for code generation.
// Blocks are not modified after Assemble returns.
type Block struct {
	Def Definition

	InputArgs  []Arg
	OutputArgs []Arg
	Docs       []Arg

	// Body holds the SQL lines as written.
	Body []string

	// InputNames are the names of InputArgs, in declaration order.
	InputNames []string
	// InputImplicitNames are placeholders used in Body that are not
	// declared as inputs, sorted.
	InputImplicitNames []string

	// Source and Line locate the block's first line, when known.
	Source string
	Line   int

	verb string
}

// Assemble partitions args, scans body for placeholders and builds a Block.
func Assemble(def Definition, args []Arg, body []string) (*Block, error) {
	b := &Block{
		Def:  def,
		Body: slices.Clone(body),
	}

	for _, a := range args {
		switch {
		case a.IsInput():
			b.InputArgs = append(b.InputArgs, a)
		case a.IsOutput():
			b.OutputArgs = append(b.OutputArgs, a)
		case a.IsDoc():
			b.Docs = append(b.Docs, a)
		}
	}

	b.InputNames = make([]string, 0, len(b.InputArgs))
	for _, a := range b.InputArgs {
		b.InputNames = append(b.InputNames, a.Name)
	}

	stmt, err := singleStatement(body)
	if err != nil {
		return nil, err
	}
	b.verb = stmt.Verb()

	placeholders := placeholderNames(stmt)
	b.InputImplicitNames = make([]string, 0, len(placeholders))
	for _, name := range placeholders {
		if !slices.Contains(b.InputNames, name) {
			b.InputImplicitNames = append(b.InputImplicitNames, name)
		}
	}

	if n := len(b.InputArgs) + len(b.OutputArgs) + len(b.Docs); n != len(args) {
		return nil, &InvariantError{
			Kind:    InvariantPartition,
			Message: fmt.Sprintf("classified %d of %d header arguments", n, len(args)),
		}
	}

	return b, nil
}

// Name returns the block's declared name.
func (b *Block) Name() string {
	return b.Def.Name
}

// ResultTemplate returns the name of the template that renders the result.
func (b *Block) ResultTemplate() string {
	return b.Def.Result.Template()
}

// AllInputs yields the prefix names, then the declared input names, then the
// implicit input names. Overlaps are not removed. The sequence can be ranged
// over any number of times.
func (b *Block) AllInputs(prefix ...string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, group := range [][]string{prefix, b.InputNames, b.InputImplicitNames} {
			for _, name := range group {
				if !yield(name) {
					return
				}
			}
		}
	}
}

// Statement returns the body joined with a newline followed by prefix, for
// embedding at an indentation level in generated code.
func (b *Block) Statement(prefix string) string {
	return strings.Join(b.Body, "\n"+prefix)
}

// Doc returns the documentation lines joined by newlines.
func (b *Block) Doc() string {
	lines := make([]string, 0, len(b.Docs))
	for _, d := range b.Docs {
		lines = append(lines, d.Value)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Verb returns the upper case keyword the statement starts with, or "".
func (b *Block) Verb() string {
	return b.verb
}

// VerbMismatch reports whether the statement verb contradicts the declared
// operation.
func (b *Block) VerbMismatch() bool {
	return !b.Def.Op.Accepts(b.verb)
}
