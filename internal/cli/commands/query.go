package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/baconql/internal/catalog"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the catalog database",
		Long: `Run read-only SQL against the catalog written by 'baconql index'.

The catalog holds the tables runs, files and blocks and the view v_blocks.
When invoked without arguments on a terminal, enters interactive mode.`,
		Example: `  # Execute SQL directly
  baconql query "SELECT name, result FROM blocks WHERE operation = 'select'"

  # List available tables
  baconql query tables

  # Show columns of a table
  baconql query schema blocks

  # Output as JSON
  baconql query "SELECT * FROM v_blocks" -o json

  # Interactive mode
  baconql query`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	cmd.AddCommand(newQueryTablesCommand())
	cmd.AddCommand(newQuerySchemaCommand())

	return cmd
}

// openCatalogReadOnly opens the configured catalog for reading.
func (c *CommandContext) openCatalogReadOnly() (*catalog.Catalog, func(), error) {
	cat := catalog.New(c.Logger)
	if err := cat.OpenReadOnly(c.Cfg.CatalogPath); err != nil {
		return nil, nil, err
	}
	return cat, func() { _ = cat.Close() }, nil
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	c := NewCommandContext(cmd)

	cat, cleanup, err := c.openCatalogReadOnly()
	if err != nil {
		return err
	}
	defer cleanup()

	var query string
	switch {
	case len(args) > 0:
		query = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		query = string(content)
	case isTerminal(cmd.InOrStdin()):
		session := newQuerySession(c.Renderer, cat)
		return runREPL(cmd.Context(), replConfig{
			Prompt:      "catalog> ",
			HistoryFile: historyFile(c.Cfg.CatalogPath, "query_history"),
			Items:       session.completions(cmd.Context()),
		}, session)
	default:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		query = string(content)
	}

	res, err := cat.Query(cmd.Context(), query)
	if err != nil {
		return err
	}
	return renderQueryResult(c.Renderer, res)
}

func newQueryTablesCommand() *cobra.Command {
	var viewsOnly bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables and views in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			cat, cleanup, err := c.openCatalogReadOnly()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cat.Tables(cmd.Context(), viewsOnly)
			if err != nil {
				return err
			}
			return renderQueryResult(c.Renderer, res)
		},
	}

	cmd.Flags().BoolVar(&viewsOnly, "views", false, "List views only")

	return cmd
}

func newQuerySchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show columns of a table or view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			cat, cleanup, err := c.openCatalogReadOnly()
			if err != nil {
				return err
			}
			defer cleanup()

			cols, err := cat.Columns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderColumns(c.Renderer, args[0], cols)
		},
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
