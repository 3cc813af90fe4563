package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	pdferrors "github.com/a3tai/pdf-extract/internal/pdf/errors"
)

const (
	// Write mode constants
	WriteModePerPage = "per-page"
	WriteModeFinal   = "final"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultWriteMode   = WriteModePerPage

	// EnvPrefix is prepended to every environment variable name
	EnvPrefix = "EXTRACT_PDF"
)

// ErrVersionRequested is returned when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for a single extraction run
type Config struct {
	// Positional arguments
	PDFPath    string
	OutputPath string

	// Extraction configuration
	WriteMode      string // "per-page" or "final"
	Probe          bool   // run the pdfcpu structural probe before opening
	ValidateOutput bool   // check every snapshot against the result schema
	MaxFileSize    int64  // Maximum PDF file size in bytes

	// Application configuration
	Version  string
	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		WriteMode:      DefaultWriteMode,
		Probe:          true,
		ValidateOutput: true,
		MaxFileSize:    DefaultMaxFileSize,
		Version:        "1.0.0",
		LogLevel:       DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
// Exactly two positional arguments are required; any other count yields an
// InvalidArguments error.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, pdferrors.InvalidArguments("%v", err)
	}

	args := pflag.Args()
	if len(args) != 2 {
		return nil, pdferrors.InvalidArguments("expected 2 positional arguments, got %d", len(args))
	}
	cfg.PDFPath = args[0]
	cfg.OutputPath = args[1]

	populateConfigFromViper(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("write_mode", cfg.WriteMode)
	viper.SetDefault("probe", cfg.Probe)
	viper.SetDefault("validate_output", cfg.ValidateOutput)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("write-mode", cfg.WriteMode, "When to write the result: 'per-page' or 'final'")
	pflag.Bool("probe", cfg.Probe, "Check the PDF structure with pdfcpu before extracting")
	pflag.Bool("validate-output", cfg.ValidateOutput, "Validate every result snapshot against the output schema")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("write_mode", pflag.Lookup("write-mode"))
	_ = viper.BindPFlag("probe", pflag.Lookup("probe"))
	_ = viper.BindPFlag("validate_output", pflag.Lookup("validate-output"))
}

// UsageLine is the one-line synopsis printed for a malformed invocation
func UsageLine() string {
	return fmt.Sprintf("Usage: %s [options] <pdf_path> <output_path>", programName())
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, UsageLine())
		fmt.Fprintf(os.Stderr, "\nExtract text, positioned blocks, metadata and sections from a PDF into JSON\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EXTRACT_PDF_LOGLEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  EXTRACT_PDF_MAXFILESIZE     Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  EXTRACT_PDF_WRITE_MODE      Write mode\n")
		fmt.Fprintf(os.Stderr, "  EXTRACT_PDF_PROBE           Structural probe (true/false)\n")
		fmt.Fprintf(os.Stderr, "  EXTRACT_PDF_VALIDATE_OUTPUT Output schema validation (true/false)\n")
	}
}

func programName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return os.Args[0]
	}
	return "extract-pdf"
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.WriteMode = viper.GetString("write_mode")
	cfg.Probe = viper.GetBool("probe")
	cfg.ValidateOutput = viper.GetBool("validate_output")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PDFPath == "" {
		return errors.New("PDF path cannot be empty")
	}
	if c.OutputPath == "" {
		return errors.New("output path cannot be empty")
	}

	if c.WriteMode != WriteModePerPage && c.WriteMode != WriteModeFinal {
		return fmt.Errorf("write mode must be either '%s' or '%s'", WriteModePerPage, WriteModeFinal)
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

// IsQuiet returns true if only failures should be logged
func (c *Config) IsQuiet() bool {
	return c.LogLevel == "warn" || c.LogLevel == "error"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{PDFPath: %s, OutputPath: %s, WriteMode: %s, Probe: %t, ValidateOutput: %t, LogLevel: %s, MaxFileSize: %d}",
		c.PDFPath, c.OutputPath, c.WriteMode, c.Probe, c.ValidateOutput, c.LogLevel, c.MaxFileSize)
}
