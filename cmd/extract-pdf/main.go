package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/a3tai/pdf-extract/internal/config"
	"github.com/a3tai/pdf-extract/internal/extract"
	"github.com/a3tai/pdf-extract/internal/output"
	pdferrors "github.com/a3tai/pdf-extract/internal/pdf/errors"
	"github.com/a3tai/pdf-extract/internal/pdf/wrapper"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging sends log output to stderr, prefixed with a per-run id
func setupLogging(cfg *config.Config, stderr io.Writer) *log.Logger {
	log.SetOutput(stderr)
	log.SetPrefix(fmt.Sprintf("[%s] ", uuid.NewString()[:8]))
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	// warn and error only report failures, which main logs itself
	if cfg.IsQuiet() {
		return log.New(io.Discard, "", 0)
	}
	return log.Default()
}

// run executes one extraction and returns the process exit code
func run(stdout, stderr io.Writer) int {
	cfg, err := config.LoadFromFlags()
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion(stdout)
		return 0
	case pdferrors.IsType(err, pdferrors.ErrorTypeInvalidArguments):
		fmt.Fprintln(stdout, config.UsageLine())
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger := setupLogging(cfg, stderr)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		log.Printf("Failed to initialize: %v", err)
		return 1
	}

	result, err := extractor.Extract(cfg.PDFPath, cfg.OutputPath)
	if err != nil {
		log.Printf("Extraction failed: %v", err)
		return 1
	}

	logger.Printf("Extracted %d pages and %d sections from %s to %s",
		result.PageCount, len(result.Sections), cfg.PDFPath, cfg.OutputPath)
	return 0
}

// newExtractor wires the PDF library, probe and output writer from cfg
func newExtractor(cfg *config.Config, logger *log.Logger) (*extract.Extractor, error) {
	mode, err := extract.ParseWriteMode(cfg.WriteMode)
	if err != nil {
		return nil, err
	}

	factory := wrapper.NewPDFLibraryFactoryWithConfig(wrapper.FactoryConfig{
		PreferredLibrary: wrapper.LibraryLedongthuc,
		MaxFileSize:      cfg.MaxFileSize,
		DebugMode:        cfg.IsDebug(),
	})
	library, err := factory.CreateDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF library: %w", err)
	}

	writer, err := output.NewWriter(cfg.ValidateOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create output writer: %w", err)
	}

	opts := []extract.Option{
		extract.WithWriteMode(mode),
		extract.WithLogger(logger),
		extract.WithDebug(cfg.IsDebug()),
	}
	if cfg.Probe {
		opts = append(opts, extract.WithProber(factory.CreateProbe()))
	}

	return extract.New(library, writer, opts...), nil
}

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Extract\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
