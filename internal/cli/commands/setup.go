// Package commands implements the baconql subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/baconql/internal/catalog"
	"github.com/leapstack-labs/baconql/internal/cli/config"
	"github.com/leapstack-labs/baconql/internal/cli/output"
	"github.com/leapstack-labs/baconql/internal/loader"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the config and logger the
// root command stored in cmd's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	// Validated at load time; an unknown mode falls back to auto.
	mode, _ := output.ParseMode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Loader returns a loader configured from the command context.
func (c *CommandContext) Loader() *loader.Loader {
	return loader.New(
		loader.WithLogger(c.Logger),
		loader.WithConcurrency(c.Cfg.Concurrency),
		loader.WithExclude(c.Cfg.Exclude...),
	)
}

// Paths returns args, or the configured SQL directory when args is empty.
func (c *CommandContext) Paths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if err := c.Cfg.ValidateSQLDir(); err != nil {
		return nil, err
	}
	return []string{c.Cfg.SQLDir}, nil
}

// OpenCatalog opens and migrates the configured catalog. The returned
// cleanup function closes it.
func (c *CommandContext) OpenCatalog() (*catalog.Catalog, func(), error) {
	cat := catalog.New(c.Logger)
	if err := cat.Open(c.Cfg.CatalogPath); err != nil {
		return nil, nil, err
	}
	if err := cat.Migrate(); err != nil {
		_ = cat.Close()
		return nil, nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return cat, func() { _ = cat.Close() }, nil
}
