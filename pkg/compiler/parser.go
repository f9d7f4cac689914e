// Package compiler turns annotated SQL blocks into Blocks for code generation.
//
// A raw block is a run of `--` header lines followed by one SQL statement:
//
//	-- :name get_user select one
//	-- :input id int
//	-- Fetch a user by primary key.
//	SELECT * FROM users WHERE id = :id AND tenant = :tenant
//
// The first header line is the definition. The remaining header lines declare
// inputs, outputs and documentation. Placeholders used in the statement but
// not declared as inputs become implicit inputs.
package compiler

import (
	"iter"
	"strings"
)

// RawBlock is one unparsed block of lines.
type RawBlock struct {
	Source string // file name, may be empty
	Line   int    // 1-based line of Lines[0] in Source, 0 when unknown
	Lines  []string
}

// lineOf returns the source line of Lines[i], or 0 when unknown.
func (r RawBlock) lineOf(i int) int {
	if r.Line <= 0 {
		return 0
	}
	return r.Line + i
}

// ParseBlock splits raw into header and body and builds a Block.
func ParseBlock(raw RawBlock) (*Block, error) {
	header, body := splitHeader(raw.Lines)
	if len(header) == 0 {
		text := ""
		if len(raw.Lines) > 0 {
			text = strings.TrimSpace(raw.Lines[0])
		}
		return nil, withLocation(&InvalidHeaderError{
			Text:   text,
			Reason: "block has no header, expected a `" + CommentMarker + " " + DefMarker + " NAME OPERATION [RETURN]' line",
		}, raw.Source, raw.lineOf(0))
	}

	lines := make([]string, len(header))
	for i, h := range header {
		s, err := decomment(h)
		if err != nil {
			return nil, withLocation(err, raw.Source, raw.lineOf(i))
		}
		lines[i] = s
	}

	def, err := ParseDefinition(lines[0])
	if err != nil {
		return nil, withLocation(err, raw.Source, raw.lineOf(0))
	}

	args := make([]Arg, 0, len(lines)-1)
	for i, line := range lines[1:] {
		arg, err := ParseArg(line)
		if err != nil {
			return nil, withLocation(err, raw.Source, raw.lineOf(i+1))
		}
		args = append(args, arg)
	}

	b, err := Assemble(def, args, body)
	if err != nil {
		return nil, withLocation(err, raw.Source, raw.lineOf(len(header)))
	}
	b.Source = raw.Source
	b.Line = raw.Line
	return b, nil
}

// splitHeader returns the longest leading run of comment lines and the
// remaining lines, which are left untouched.
func splitHeader(lines []string) (header, body []string) {
	n := 0
	for n < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[n]), CommentMarker) {
		n++
	}
	return lines[:n], lines[n:]
}

// Parse lazily parses raws, yielding one (block, error) pair per raw block
// in input order. Exactly one of the pair is non-nil. Stopping the range
// stops parsing; whether the sequence can be ranged over again depends on
// raws.
func Parse(raws iter.Seq[RawBlock]) iter.Seq2[*Block, error] {
	return func(yield func(*Block, error) bool) {
		for raw := range raws {
			if !yield(ParseBlock(raw)) {
				return
			}
		}
	}
}

// ParseAll parses every raw block and stops at the first error.
func ParseAll(raws []RawBlock) ([]*Block, error) {
	blocks := make([]*Block, 0, len(raws))
	for _, raw := range raws {
		b, err := ParseBlock(raw)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
