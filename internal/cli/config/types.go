// Package config loads baconql CLI configuration from defaults, a
// baconql.yaml file, BACONQL_ environment variables and command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	SQLDir       string   `koanf:"sql_dir"`
	CatalogPath  string   `koanf:"catalog_path"`
	Concurrency  int      `koanf:"concurrency"`
	Verbose      bool     `koanf:"verbose"`
	OutputFormat string   `koanf:"output"`
	Exclude      []string `koanf:"exclude"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultSQLDir      = "sql"
	DefaultCatalogFile = ".baconql/catalog.db"
	DefaultConcurrency = 4
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	EnvPrefix          = "BACONQL_"
)

// FileNames are the config file names searched for, in order.
var FileNames = []string{"baconql.yaml", "baconql.yml"}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		SQLDir:       DefaultSQLDir,
		CatalogPath:  DefaultCatalogFile,
		Concurrency:  DefaultConcurrency,
		OutputFormat: DefaultOutput,
	}
}
