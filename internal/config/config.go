package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultOutputDirName = "processed_pdfs"

	// EnvPrefix is prepended to every environment variable, e.g. PDF_RETITLE_OUTPUT
	EnvPrefix = "PDF_RETITLE"
)

// ErrVersionRequested is returned when --version is on the command line
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for a retitle run
type Config struct {
	// Inputs are the files, directories and glob patterns to process
	Inputs []string

	// OutputDir is empty when the default beside the first input should be used
	OutputDir     string
	OutputDirName string

	ReportPath string
	ConfigFile string
	DryRun     bool
	NoPrompt   bool

	Version     string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputDirName: DefaultOutputDirName,
		Version:       "1.0.0",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:], os.Stderr)
}

// Load parses args (without the program name) layered over an optional config
// file, PDF_RETITLE_* environment variables and defaults
func Load(program string, args []string, usageOut io.Writer) (*Config, error) {
	cfg := DefaultConfig()

	if err := checkVersionFlag(args); err != nil {
		return nil, err
	}

	v := viper.New()
	fs := pflag.NewFlagSet(program, pflag.ContinueOnError)
	fs.SetOutput(usageOut)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, program, usageOut)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", cfgFile, err)
		}
	}

	populateConfigFromViper(v, cfg)
	cfg.Inputs = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output", cfg.OutputDir)
	v.SetDefault("output-dir-name", cfg.OutputDirName)
	v.SetDefault("report", cfg.ReportPath)
	v.SetDefault("config", cfg.ConfigFile)
	v.SetDefault("dry-run", cfg.DryRun)
	v.SetDefault("no-prompt", cfg.NoPrompt)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP("output", "o", cfg.OutputDir, "Output directory (default: <first input dir>/"+cfg.OutputDirName+")")
	fs.String("output-dir-name", cfg.OutputDirName, "Name of the default output directory")
	fs.String("report", cfg.ReportPath, "Write a YAML report of the batch to this file")
	fs.String("config", cfg.ConfigFile, "YAML config file")
	fs.Bool("dry-run", cfg.DryRun, "Show the names that would be used without writing files")
	fs.Bool("no-prompt", cfg.NoPrompt, "Skip files that need manual input instead of prompting")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	for _, name := range []string{
		"output", "output-dir-name", "report", "config",
		"dry-run", "no-prompt", "loglevel", "maxfilesize",
	} {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, program string, out io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s <file|dir|glob> [<file|dir|glob> ...] [--output|-o <dir>]\n", program)
		fmt.Fprintf(out, "\nRenames and retitles PDFs from the \"Note N Level M\" marker and the\n")
		fmt.Fprintf(out, "largest text on the first page.\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s notes/                       # every *.pdf in notes/\n", program)
		fmt.Fprintf(out, "  %s 'scans/*.pdf' -o renamed     # glob, explicit output directory\n", program)
		fmt.Fprintf(out, "  %s a.pdf b.pdf --dry-run        # preview names only\n", program)
		fmt.Fprintf(out, "\nEnvironment Variables:\n")
		fmt.Fprintf(out, "  %s_OUTPUT        Output directory\n", EnvPrefix)
		fmt.Fprintf(out, "  %s_LOGLEVEL      Log level\n", EnvPrefix)
		fmt.Fprintf(out, "  %s_MAXFILESIZE   Maximum file size\n", EnvPrefix)
		fmt.Fprintf(out, "  %s_NO_PROMPT     Never prompt for manual input\n", EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.OutputDir = v.GetString("output")
	cfg.OutputDirName = v.GetString("output-dir-name")
	cfg.ReportPath = v.GetString("report")
	cfg.ConfigFile = v.GetString("config")
	cfg.DryRun = v.GetBool("dry-run")
	cfg.NoPrompt = v.GetBool("no-prompt")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("at least one file, directory or pattern is required")
	}

	if c.OutputDirName == "" {
		return errors.New("output directory name cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Inputs: %v, OutputDir: %s, DryRun: %t, NoPrompt: %t, LogLevel: %s, MaxFileSize: %d}",
		c.Inputs, c.OutputDir, c.DryRun, c.NoPrompt, c.LogLevel, c.MaxFileSize)
}
