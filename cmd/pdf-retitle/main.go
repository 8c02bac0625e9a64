package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-retitle/internal/batch"
	"github.com/a3tai/pdf-retitle/internal/config"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging returns a text logger on w at the configured level and makes it
// the default logger
func setupLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IsDebug(),
	}))
	slog.SetDefault(logger)
	return logger
}

// run expands the inputs, processes them and prints the summary. The exit code
// is non-zero only when the batch itself could not run.
func run(cfg *config.Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) int {
	exp := batch.ExpandInputs(cfg.Inputs)
	for _, p := range exp.Problems {
		fmt.Fprintf(stdout, "Warning: %s\n", p.Message)
	}

	if len(exp.Files) == 0 {
		fmt.Fprintln(stdout, "No PDF files found.")
		return 0
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = batch.DefaultOutputDir(exp.Files, cfg.OutputDirName)
	}

	var prompter batch.Prompter = batch.NewLinePrompter(stdin, stdout)
	if cfg.NoPrompt {
		prompter = batch.DeclinePrompter{}
	}

	driver, err := batch.NewDriver(batch.Options{
		OutputDir:   outputDir,
		MaxFileSize: cfg.MaxFileSize,
		DryRun:      cfg.DryRun,
		Prompter:    prompter,
		Out:         stdout,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("cannot start batch", "error", err)
		return 1
	}

	logger.Debug("starting batch", "files", len(exp.Files), "output", outputDir, "config", cfg.String())

	report := driver.Run(exp.Files)
	report.SkippedInputs = exp.Problems
	report.Print(stdout)

	if cfg.ReportPath != "" {
		if err := report.WriteYAML(cfg.ReportPath); err != nil {
			logger.Error("cannot write report", "error", err)
			return 1
		}
	}

	return 0
}

func main() {
	cfg, err := config.LoadFromFlags()
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion()
		return
	case errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger := setupLogging(cfg, os.Stderr)
	os.Exit(run(cfg, os.Stdin, os.Stdout, logger))
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Retitle\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
