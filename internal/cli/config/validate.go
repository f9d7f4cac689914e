package config

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/baconql/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SQLDir == "" {
		return fmt.Errorf("sql_dir is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	return nil
}

// ValidateSQLDir checks that the SQL directory exists.
func (c *Config) ValidateSQLDir() error {
	if _, err := os.Stat(c.SQLDir); os.IsNotExist(err) {
		return fmt.Errorf("sql directory does not exist: %s\nHint: Create the directory or use --sql-dir to specify a different path", c.SQLDir)
	}
	return nil
}
