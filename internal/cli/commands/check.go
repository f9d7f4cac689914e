package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/baconql/internal/cli/output"
	"github.com/leapstack-labs/baconql/internal/loader"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Parse SQL files and report invalid blocks",
		Long: `Parse every block in the given files or directories and report errors.

Directories are searched recursively for *.sql files. Without arguments the
configured sql_dir is checked. The command fails if any block is invalid.`,
		Example: `  # Check the configured SQL directory
  baconql check

  # Check specific files
  baconql check sql/users.sql sql/orders.sql

  # Machine readable report
  baconql check -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	c := NewCommandContext(cmd)

	paths, err := c.Paths(args)
	if err != nil {
		return err
	}

	report, err := check(cmd.Context(), c.Loader(), paths)
	if err != nil {
		return err
	}

	if err := renderCheck(c.Renderer, report); err != nil {
		return err
	}

	if report.Summary.Errors > 0 {
		return fmt.Errorf("%d invalid block(s) in %d file(s)", report.Summary.Errors, report.Summary.Files)
	}
	return nil
}

// check loads paths and summarizes the result.
func check(ctx context.Context, l *loader.Loader, paths []string) (*output.CheckOutput, error) {
	results, err := l.LoadPaths(ctx, paths...)
	if err != nil {
		return nil, err
	}

	report := &output.CheckOutput{Files: make([]output.FileCheck, 0, len(results))}
	for _, res := range results {
		fc := output.FileCheck{
			Path:   res.Path,
			Hash:   res.Hash,
			Blocks: make([]string, 0, len(res.Blocks)),
		}
		for _, b := range res.Blocks {
			fc.Blocks = append(fc.Blocks, b.Name())
			if b.VerbMismatch() {
				fc.Warnings = append(fc.Warnings, output.BlockIssue{
					Name:    b.Name(),
					Line:    b.Line,
					Message: fmt.Sprintf("declared %s but statement starts with %s", b.Def.Op, verbOrNone(b.Verb())),
				})
			}
		}
		for _, e := range res.Errors {
			fc.Errors = append(fc.Errors, e.Error())
		}

		report.Summary.Files++
		report.Summary.Blocks += len(res.Blocks)
		report.Summary.Errors += len(res.Errors)
		report.Summary.Warnings += len(fc.Warnings)
		report.Files = append(report.Files, fc)
	}
	return report, nil
}

func verbOrNone(verb string) string {
	if verb == "" {
		return "no keyword"
	}
	return verb
}

func renderCheck(r *output.Renderer, report *output.CheckOutput) error {
	if ok, err := r.Structured(report); ok {
		return err
	}

	r.Header(1, fmt.Sprintf("Checked %d file(s)", report.Summary.Files))
	for _, fc := range report.Files {
		status := "success"
		switch {
		case len(fc.Errors) > 0:
			status = "error"
		case len(fc.Warnings) > 0:
			status = "warning"
		}
		r.StatusLine(fc.Path, status, fmt.Sprintf("%d block(s)", len(fc.Blocks)))
		for _, e := range fc.Errors {
			r.Printf("      %s\n", e)
		}
		for _, w := range fc.Warnings {
			r.Printf("      %s:%d: %s: %s\n", fc.Path, w.Line, w.Name, w.Message)
		}
	}
	r.Println()

	summary := fmt.Sprintf("%d block(s), %d error(s), %d warning(s)",
		report.Summary.Blocks, report.Summary.Errors, report.Summary.Warnings)
	if report.Summary.Errors > 0 {
		r.Error(summary)
	} else {
		r.Success(summary)
	}
	return nil
}
