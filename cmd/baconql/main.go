// Package main provides the baconql command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/baconql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
