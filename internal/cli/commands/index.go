package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/baconql/internal/catalog"
	"github.com/leapstack-labs/baconql/internal/cli/output"
)

// IndexOptions holds options for the index command.
type IndexOptions struct {
	Force bool
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	opts := &IndexOptions{}

	cmd := &cobra.Command{
		Use:   "index [paths...]",
		Short: "Record parsed blocks in the catalog",
		Long: `Parse SQL files and store their blocks in the catalog database.

Files whose content hash matches the catalog are skipped. Files with invalid
blocks are not indexed and keep their previous catalog entries. Catalog
entries for files that no longer exist are removed.`,
		Example: `  # Index the configured SQL directory
  baconql index

  # Re-index everything
  baconql index --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-index files even when unchanged")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string, opts *IndexOptions) error {
	ctx := cmd.Context()
	c := NewCommandContext(cmd)

	paths, err := c.Paths(args)
	if err != nil {
		return err
	}
	results, err := c.Loader().LoadPaths(ctx, paths...)
	if err != nil {
		return err
	}

	cat, cleanup, err := c.OpenCatalog()
	if err != nil {
		return err
	}
	defer cleanup()

	runID, err := cat.BeginRun(ctx)
	if err != nil {
		return err
	}
	c.Logger.Debug("starting index run", "run_id", runID, "files", len(results))

	report := &output.IndexOutput{RunID: runID, Files: make([]output.IndexedFile, 0, len(results))}
	seen := make(map[string]bool, len(results))
	for _, res := range results {
		seen[res.Path] = true
		f := output.IndexedFile{Path: res.Path, Blocks: len(res.Blocks)}

		switch {
		case res.HasErrors():
			f.Status = "error"
			f.Error = res.Errors[0].Error()
			report.Summary.Failed++
		default:
			if opts.Force {
				if err := cat.RemoveFile(ctx, res.Path); err != nil {
					return err
				}
			}
			skipped, err := cat.IndexFile(ctx, runID, res.Path, res.Hash, res.Blocks)
			if err != nil {
				return err
			}
			if skipped {
				f.Status = "skipped"
				report.Summary.Skipped++
			} else {
				f.Status = "indexed"
				report.Summary.Indexed++
				report.Summary.Blocks += len(res.Blocks)
			}
		}
		report.Files = append(report.Files, f)
	}

	stale, err := staleFiles(ctx, cat, seen)
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := cat.RemoveFile(ctx, path); err != nil {
			return err
		}
		c.Logger.Debug("removed stale file", "path", path)
		report.Files = append(report.Files, output.IndexedFile{Path: path, Status: "removed"})
		report.Summary.Removed++
	}

	if err := cat.FinishRun(ctx, runID, report.Summary.Indexed, report.Summary.Blocks); err != nil {
		return err
	}

	if err := renderIndex(c.Renderer, report, c.Cfg.CatalogPath); err != nil {
		return err
	}

	if report.Summary.Failed > 0 {
		return fmt.Errorf("%d file(s) not indexed due to invalid blocks", report.Summary.Failed)
	}
	return nil
}

func renderIndex(r *output.Renderer, report *output.IndexOutput, catalogPath string) error {
	if ok, err := r.Structured(report); ok {
		return err
	}

	r.Header(1, "Index")
	for _, f := range report.Files {
		switch f.Status {
		case "indexed":
			r.StatusLine(f.Path, "success", fmt.Sprintf("%d block(s)", f.Blocks))
		case "skipped":
			r.StatusLine(f.Path, "skipped", "unchanged")
		case "removed":
			r.StatusLine(f.Path, "warning", "removed from catalog")
		default:
			r.StatusLine(f.Path, "error", f.Error)
		}
	}
	r.Println()
	r.Success(fmt.Sprintf("Indexed %d file(s), skipped %d, failed %d, removed %d",
		report.Summary.Indexed, report.Summary.Skipped, report.Summary.Failed, report.Summary.Removed))
	r.Muted(fmt.Sprintf("Catalog saved to %s", catalogPath))
	return nil
}

// staleFiles returns catalog files that were not loaded in this run and no
// longer exist on disk.
func staleFiles(ctx context.Context, cat *catalog.Catalog, seen map[string]bool) ([]string, error) {
	files, err := cat.Files(ctx)
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, path := range files {
		if seen[path] {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			stale = append(stale, path)
		}
	}
	return stale, nil
}
