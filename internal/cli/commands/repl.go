package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/baconql/internal/catalog"
	"github.com/leapstack-labs/baconql/internal/cli/output"
	"github.com/leapstack-labs/baconql/pkg/compiler"
)

// replSource names blocks typed into the block REPL.
const replSource = "<repl>"

// replSession consumes lines read by runREPL.
type replSession interface {
	// handleLine processes one line and returns false to end the session.
	handleLine(ctx context.Context, line string) bool
	// pending reports whether a multi-line entry is in progress.
	pending() bool
	reset()
}

type replConfig struct {
	Prompt      string
	HistoryFile string
	Items       []string
}

// runREPL reads lines from the terminal into s until EOF or s ends the
// session. Ctrl+C discards the pending entry.
func runREPL(ctx context.Context, cfg replConfig, s replSession) error {
	items := make([]readline.PrefixCompleterInterface, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		items = append(items, readline.PcItem(item))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	continuation := strings.Repeat(" ", max(len(cfg.Prompt)-5, 0)) + "...> "

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.reset()
			rl.SetPrompt(cfg.Prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			if s.pending() {
				s.handleLine(ctx, "")
			}
			return nil
		}
		if err != nil {
			return err
		}

		if !s.handleLine(ctx, line) {
			return nil
		}
		if s.pending() {
			rl.SetPrompt(continuation)
		} else {
			rl.SetPrompt(cfg.Prompt)
		}
	}
	return nil
}

// historyFile places a REPL history file next to the catalog, or disables
// history for an in-memory catalog.
func historyFile(catalogPath, name string) string {
	if catalogPath == catalog.MemoryPath {
		return ""
	}
	return filepath.Join(filepath.Dir(catalogPath), name)
}

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse blocks interactively",
		Long: `Type a block (header lines followed by one statement) and finish it with
an empty line to see how it parses. Type .help for commands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			c.Renderer.Muted("Type a block and finish it with an empty line. .help for commands, .quit to exit")
			return runREPL(cmd.Context(), replConfig{
				Prompt:      "baconql> ",
				HistoryFile: historyFile(c.Cfg.CatalogPath, "repl_history"),
				Items:       []string{"-- :name", "-- :input", "-- :output", "-- :doc", ".help", ".clear", ".quit", ".exit"},
			}, newBlockSession(c.Renderer))
		},
	}
}

// blockSession parses each blank-line terminated block it is given.
type blockSession struct {
	r     *output.Renderer
	lines []string
}

func newBlockSession(r *output.Renderer) *blockSession {
	return &blockSession{r: r}
}

func (s *blockSession) pending() bool { return len(s.lines) > 0 }

func (s *blockSession) reset() { s.lines = nil }

func (s *blockSession) handleLine(_ context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)

	if !s.pending() && strings.HasPrefix(trimmed, ".") {
		switch strings.ToLower(strings.Fields(trimmed)[0]) {
		case ".quit", ".exit":
			return false
		case ".help":
			s.r.Println(blockHelp)
		case ".clear":
			s.reset()
		default:
			s.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", trimmed))
		}
		return true
	}

	if trimmed != "" {
		s.lines = append(s.lines, line)
		return true
	}
	if !s.pending() {
		return true
	}

	b, err := compiler.ParseBlock(compiler.RawBlock{Source: replSource, Line: 1, Lines: s.lines})
	s.reset()
	if err != nil {
		s.r.Error(err.Error())
		return true
	}

	if err := renderInspect(s.r, []catalog.BlockRecord{catalog.NewBlockRecord(replSource, b)}, true); err != nil {
		s.r.Error(err.Error())
	}
	if b.VerbMismatch() {
		s.r.Warning(fmt.Sprintf("declared %s but statement starts with %s", b.Def.Op, verbOrNone(b.Verb())))
	}
	return true
}

const blockHelp = `
Enter header lines, then the statement, then an empty line:

  -- :name get_user select one
  -- :input id int
  SELECT * FROM users WHERE id = :id

Commands:
  .help           Show this help message
  .clear          Discard the block being typed
  .quit / .exit   Exit the REPL
`

// querySession runs semicolon terminated SQL against the catalog.
type querySession struct {
	r   *output.Renderer
	cat *catalog.Catalog
	buf strings.Builder
}

func newQuerySession(r *output.Renderer, cat *catalog.Catalog) *querySession {
	return &querySession{r: r, cat: cat}
}

func (s *querySession) pending() bool { return s.buf.Len() > 0 }

func (s *querySession) reset() { s.buf.Reset() }

func (s *querySession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" && !s.pending() {
		return true
	}

	if !s.pending() && strings.HasPrefix(line, ".") {
		return s.dotCommand(ctx, strings.Fields(line))
	}

	s.buf.WriteString(line)
	if line != "" && !strings.HasSuffix(line, ";") {
		s.buf.WriteString(" ")
		return true
	}

	query := strings.TrimSuffix(strings.TrimSpace(s.buf.String()), ";")
	s.reset()

	res, err := s.cat.Query(ctx, query)
	if err != nil {
		s.r.Error(err.Error())
		return true
	}
	if err := renderQueryResult(s.r, res); err != nil {
		s.r.Error(err.Error())
	}
	return true
}

func (s *querySession) dotCommand(ctx context.Context, parts []string) bool {
	var err error

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return false
	case ".help":
		s.r.Println(queryHelp)
	case ".tables", ".views":
		var res *catalog.QueryResult
		if res, err = s.cat.Tables(ctx, parts[0] == ".views"); err == nil {
			err = renderQueryResult(s.r, res)
		}
	case ".schema":
		if len(parts) < 2 {
			s.r.Error("Usage: .schema <table>")
			return true
		}
		var cols []catalog.ColumnInfo
		if cols, err = s.cat.Columns(ctx, parts[1]); err == nil {
			err = renderColumns(s.r, parts[1], cols)
		}
	default:
		s.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", parts[0]))
	}

	if err != nil {
		s.r.Error(err.Error())
	}
	return true
}

// completions returns table names and dot commands for tab completion.
func (s *querySession) completions(ctx context.Context) []string {
	items := []string{".help", ".tables", ".views", ".schema", ".quit", ".exit"}
	res, err := s.cat.Tables(ctx, false)
	if err != nil {
		return items
	}
	for _, row := range res.Rows {
		items = append(items, formatValue(row[0]))
	}
	return items
}

const queryHelp = `
Commands:
  .help           Show this help message
  .tables         List all tables and views
  .views          List views only
  .schema <name>  Show columns of a table or view
  .quit / .exit   Exit the REPL

Statements end with a semicolon and may span several lines.`
