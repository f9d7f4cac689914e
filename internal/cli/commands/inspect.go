package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/baconql/internal/catalog"
	"github.com/leapstack-labs/baconql/internal/cli/output"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Name        string
	FromCatalog bool
	ShowSQL     bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect [paths...]",
		Short: "Show parsed blocks",
		Long: `Show every parsed block with its operation, result kind and inputs.

Blocks come from parsing the given paths (default: sql_dir), or from the
catalog with --from-catalog. Invalid blocks are skipped; use check to see them.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown
  
Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # Table of all blocks
  baconql inspect

  # One block with its SQL
  baconql inspect --name get_user --sql

  # Blocks recorded by the last index run, as YAML
  baconql inspect --from-catalog -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Only show blocks with this name")
	cmd.Flags().BoolVar(&opts.FromCatalog, "from-catalog", false, "Read blocks from the catalog instead of parsing files")
	cmd.Flags().BoolVar(&opts.ShowSQL, "sql", false, "Include statements in text output")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	c := NewCommandContext(cmd)

	var (
		records []catalog.BlockRecord
		err     error
	)
	if opts.FromCatalog {
		records, err = catalogRecords(cmd.Context(), c, opts.Name)
	} else {
		records, err = parsedRecords(cmd.Context(), c, args, opts.Name)
	}
	if err != nil {
		return err
	}

	return renderInspect(c.Renderer, records, opts.ShowSQL)
}

func parsedRecords(ctx context.Context, c *CommandContext, args []string, name string) ([]catalog.BlockRecord, error) {
	paths, err := c.Paths(args)
	if err != nil {
		return nil, err
	}
	results, err := c.Loader().LoadPaths(ctx, paths...)
	if err != nil {
		return nil, err
	}

	records := []catalog.BlockRecord{}
	for _, res := range results {
		for _, b := range res.Blocks {
			if name != "" && b.Name() != name {
				continue
			}
			records = append(records, catalog.NewBlockRecord(res.Path, b))
		}
		if res.HasErrors() {
			c.Logger.Warn("skipping invalid blocks", "path", res.Path, "errors", len(res.Errors))
		}
	}
	return records, nil
}

func catalogRecords(ctx context.Context, c *CommandContext, name string) ([]catalog.BlockRecord, error) {
	cat, cleanup, err := c.OpenCatalog()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var records []catalog.BlockRecord
	if name != "" {
		records, err = cat.BlocksNamed(ctx, name)
	} else {
		records, err = cat.Blocks(ctx)
	}
	if records == nil {
		records = []catalog.BlockRecord{}
	}
	return records, err
}

func renderInspect(r *output.Renderer, records []catalog.BlockRecord, showSQL bool) error {
	if ok, err := r.Structured(records); ok {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		inspectMarkdown(r, records)
		return nil
	}

	if len(records) == 0 {
		r.Muted("No blocks found")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Name,
			rec.Operation,
			rec.Result,
			strings.Join(rec.Inputs, ", "),
			strings.Join(rec.ImplicitInputs, ", "),
			fmt.Sprintf("%s:%d", rec.FilePath, rec.Line),
		})
	}
	r.Table([]string{"Name", "Operation", "Result", "Inputs", "Implicit", "Location"}, rows)

	if showSQL {
		for _, rec := range records {
			r.Println()
			r.Println(r.Styles().Bold.Render(rec.Name))
			r.Println(rec.Statement)
		}
	}
	return nil
}

func inspectMarkdown(r *output.Renderer, records []catalog.BlockRecord) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Blocks (%d total)", len(records))))
	r.Println()

	for _, rec := range records {
		r.Println(output.FormatHeader(2, rec.Name))
		r.Println(output.FormatKeyValue("Operation", rec.Operation))
		r.Println(output.FormatKeyValue("Result", rec.Result))
		r.Println(output.FormatKeyValue("Location", fmt.Sprintf("%s:%d", rec.FilePath, rec.Line)))
		if len(rec.Inputs) > 0 {
			r.Println(output.FormatKeyValue("Inputs", strings.Join(rec.Inputs, ", ")))
		}
		if len(rec.ImplicitInputs) > 0 {
			r.Println(output.FormatKeyValue("Implicit inputs", strings.Join(rec.ImplicitInputs, ", ")))
		}
		if len(rec.Outputs) > 0 {
			r.Println(output.FormatKeyValue("Outputs", strings.Join(rec.Outputs, ", ")))
		}
		if rec.Doc != "" {
			r.Println()
			r.Println(rec.Doc)
		}
		r.Println()
		r.Println(output.FormatCodeBlock("sql", rec.Statement))
		r.Println()
	}
}
