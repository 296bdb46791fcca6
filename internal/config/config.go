// Package config provides configuration management for scriptlets with Viper integration.
package config

// Standard file permissions (rw-r--r--)
const filePerm = 0644

// Config represents the complete configuration for scriptlets.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging" json:"logging"`
	Compiler CompilerConfig `mapstructure:"compiler" yaml:"compiler" json:"compiler"`
	Codegen  CodegenConfig  `mapstructure:"codegen" yaml:"codegen" json:"codegen"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,enum=off"`
	Format string `mapstructure:"format" yaml:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// CompilerConfig tunes filter list compilation.
type CompilerConfig struct {
	// Workers bounds concurrent line conversions; 0 uses every CPU
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers" jsonschema:"minimum=0"`
	// CacheSize bounds the in-memory memo of converted rules
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size" json:"cache_size" jsonschema:"minimum=1"`
	// Strict aborts on the first rule that fails to convert
	Strict bool `mapstructure:"strict" yaml:"strict" json:"strict"`
	// CacheDir holds compiled lists between runs; empty disables the disk cache
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir" json:"cache_dir"`
}

// CodegenConfig holds the metadata stamped into generated code.
type CodegenConfig struct {
	Engine  string `mapstructure:"engine" yaml:"engine" json:"engine"`
	Version string `mapstructure:"version" yaml:"version" json:"version"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	// Verify parses generated code before printing it
	Verify bool `mapstructure:"verify" yaml:"verify" json:"verify"`
}
