// Package segment cuts SQL source files into raw blocks, one per
// `-- :name` definition line.
package segment

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/leapstack-labs/baconql/pkg/compiler"
)

// startPattern matches a trimmed line that opens a new block.
var startPattern = regexp.MustCompile(`^` + compiler.CommentMarker + `\s*` + compiler.DefMarker + `(\s|$)`)

// IsStart reports whether line opens a new block.
func IsStart(line string) bool {
	return startPattern.MatchString(strings.TrimSpace(line))
}

// Split cuts content into raw blocks. Lines before the first definition line
// are ignored, as are trailing blank lines of each block.
func Split(source, content string) []compiler.RawBlock {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var (
		blocks  []compiler.RawBlock
		current *compiler.RawBlock
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Lines = trimTrailingBlank(current.Lines)
		blocks = append(blocks, *current)
		current = nil
	}

	for i, line := range lines {
		if IsStart(line) {
			flush()
			current = &compiler.RawBlock{Source: source, Line: i + 1}
		}
		if current != nil {
			current.Lines = append(current.Lines, line)
		}
	}
	flush()

	return blocks
}

// Read reads all of r and splits it.
func Read(source string, r io.Reader) ([]compiler.RawBlock, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return Split(source, string(data)), nil
}

func trimTrailingBlank(lines []string) []string {
	n := len(lines)
	for n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		n--
	}
	return lines[:n]
}
