package config

import "github.com/spf13/pflag"

// RegisterFlags adds the persistent flags that map onto config keys.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("sql-dir", "", "Path to the SQL directory (default: ./"+DefaultSQLDir+")")
	fs.String("catalog", "", "Path to the catalog database (default: ./"+DefaultCatalogFile+")")
	fs.Int("concurrency", DefaultConcurrency, "Number of files loaded at once")
	fs.StringSlice("exclude", nil, "Glob patterns of files to skip")
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")
}
