package model

// Config holds the tunables for a conversion run
type Config struct {
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// OutputConfig controls how tables are written and what happens to the source
type OutputConfig struct {
	UseCRLF bool `yaml:"use_crlf" mapstructure:"use_crlf"` // \r\n row terminators
	KeepLog bool `yaml:"keep_log" mapstructure:"keep_log"` // keep {base}_logfile.txt after success
}

// ScanConfig controls the line reader
type ScanConfig struct {
	MaxLineBytes int `yaml:"max_line_bytes" mapstructure:"max_line_bytes"`
}

// LogConfig controls stderr diagnostics
type LogConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
}

// DefaultMaxLineBytes bounds a single log line
const DefaultMaxLineBytes = 1 << 20

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			UseCRLF: false,
			KeepLog: false,
		},
		Scan: ScanConfig{
			MaxLineBytes: DefaultMaxLineBytes,
		},
		Log: LogConfig{
			Verbose: false,
			NoColor: false,
		},
	}
}
