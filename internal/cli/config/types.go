// Package config provides configuration management for the fmto CLI.
//
// Settings are layered from defaults, an fmto config file, FMTO_ environment
// variables and command-line flags, in increasing order of precedence.
package config

// Default configuration values.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultOutput    = "auto"
)

// configFileNames are searched in order when no config file is given.
var configFileNames = []string{
	"fmto.yaml",
	"fmto.yml",
	"fmto.conf",
	"fmto.json",
	"fmto.toml",
}

// Config holds the CLI configuration.
type Config struct {
	// InputFormat forces the input format instead of inferring it from the
	// input file extension.
	InputFormat string `koanf:"input_format"`
	// OutputFormats are the formats written when converting.
	OutputFormats []string `koanf:"output_formats"`
	// OutputDir receives one file per output format.
	OutputDir string `koanf:"output_dir"`

	Verbose   bool   `koanf:"verbose"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// OutputFormat is the terminal output mode (auto|text|markdown|json).
	OutputFormat string `koanf:"output"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		OutputFormat: DefaultOutput,
	}
}
