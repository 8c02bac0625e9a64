// Package batch runs the retitle pipeline over a list of input files.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/a3tai/pdf-retitle/internal/notes"
	"github.com/a3tai/pdf-retitle/internal/pdf"
	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
	"github.com/a3tai/pdf-retitle/internal/pdf/writer"
)

// DefaultDirPerm is used when creating the output directory
const DefaultDirPerm = 0o750

// Rewriter writes a retitled copy of a source document
type Rewriter interface {
	Rewrite(sourcePath, outputPath, title string) (*writer.Result, error)
}

// Options configure a Driver
type Options struct {
	OutputDir   string
	MaxFileSize int64
	DryRun      bool
	Prompter    Prompter
	Rewriter    Rewriter
	Out         io.Writer
	Logger      *slog.Logger
}

// Driver processes files one at a time, in order
type Driver struct {
	reader    *pdf.Reader
	rewriter  Rewriter
	prompter  Prompter
	out       io.Writer
	logger    *slog.Logger
	outputDir string
	dryRun    bool
}

// NewDriver creates the output directory if needed and returns a Driver.
// Failing to create the directory is fatal for the whole batch.
func NewDriver(opts Options) (*Driver, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if !opts.DryRun {
		if err := os.MkdirAll(opts.OutputDir, DefaultDirPerm); err != nil {
			return nil, fmt.Errorf("cannot create output directory %s: %w", opts.OutputDir, err)
		}
	}

	d := &Driver{
		reader:    pdf.NewReader(opts.MaxFileSize),
		rewriter:  opts.Rewriter,
		prompter:  opts.Prompter,
		out:       opts.Out,
		logger:    opts.Logger,
		outputDir: opts.OutputDir,
		dryRun:    opts.DryRun,
	}
	if d.rewriter == nil {
		d.rewriter = writer.NewWriter()
	}
	if d.prompter == nil {
		d.prompter = DeclinePrompter{}
	}
	if d.out == nil {
		d.out = io.Discard
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d, nil
}

// Run processes every file and returns the accumulated report. Per-file
// failures are recorded and never stop the batch.
func (d *Driver) Run(files []string) *Report {
	report := &Report{OutputDir: d.outputDir, DryRun: d.dryRun}

	for _, path := range files {
		res := d.ProcessFile(path)
		report.add(res)

		switch res.State {
		case StateFailed:
			d.logger.Warn("file failed", "path", path, "reason", res.Reason)
		case StateSkipped:
			d.logger.Info("file skipped", "path", path, "reason", res.Reason)
		}
	}

	return report
}

// ProcessFile runs one file through extraction, naming and writing
func (d *Driver) ProcessFile(path string) (res FileResult) {
	res = FileResult{Path: path, State: StatePending}

	defer func() {
		if r := recover(); r != nil {
			res = failed(res, pdferrors.NewPDFError(pdferrors.ErrorTypeExtraction,
				fmt.Sprintf("unexpected failure: %v", r)).WithFile(path))
		}
	}()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(d.out, "File not found: %s\n", path)
		res.State = StateSkipped
		res.Reason = "file not found"
		return res
	}

	fmt.Fprintf(d.out, "Processing: %s\n", filepath.Base(path))

	doc, err := d.reader.Open(path)
	if err != nil {
		return failed(res, err)
	}
	defer doc.Close()

	res.Pages = doc.PageCount()

	page, err := doc.FirstPage()
	if err != nil {
		return failed(res, err)
	}
	res.State = StateParsed

	if d.logger.Enabled(context.Background(), slog.LevelDebug) {
		d.logger.Debug("first page read",
			"path", path,
			"pages", res.Pages,
			"fragments", len(page.Fragments),
			"metadata", doc.Metadata())
	}

	inputs, err := d.extractInputs(path, page)
	if err != nil {
		if !canFallBack(err) {
			return failed(res, err)
		}
		manual, ok := askManualInputs(d.prompter, d.out, filepath.Base(path))
		if !ok {
			res.State = StateSkipped
			res.Reason = "manual input declined"
			return res
		}
		inputs = manual
		res.Manual = true
	}
	res.Inputs = &inputs

	artifact := inputs.Artifact(d.outputDir)
	if within, err := isPathWithinDirectory(artifact.Path, d.outputDir); err != nil || !within {
		return failed(res, pdferrors.NewPDFError(pdferrors.ErrorTypeIO,
			fmt.Sprintf("output path escapes output directory: %s", artifact.Filename)).WithFile(path))
	}
	res.Artifact = &artifact
	res.State = StateNamed

	d.logger.Debug("named",
		"path", path,
		"note", inputs.Note,
		"level", inputs.Level,
		"title", inputs.Title,
		"output", artifact.Path)

	if d.dryRun {
		fmt.Fprintf(d.out, "Would save to: %s (title %q)\n", artifact.Path, artifact.DocumentTitle)
		return res
	}

	result, err := d.rewriter.Rewrite(path, artifact.Path, artifact.DocumentTitle)
	if err != nil {
		return failed(res, fmt.Errorf("failed while generating or saving output PDF: %w", err))
	}
	res.State = StateWritten
	res.Pages = result.PageCount

	fmt.Fprintf(d.out, "Saved to: %s\n", result.Path)
	return res
}

// extractInputs runs marker and title extraction independently and joins
// their failures
func (d *Driver) extractInputs(path string, page *pdf.PageText) (notes.Inputs, error) {
	marker, markerErr := notes.ParseMarker(page.Text)
	if markerErr != nil {
		fmt.Fprintf(d.out, "    Could not extract note/level: %v\n", markerErr)
	}

	title, titleErr := notes.ExtractTitle(page.Fragments)
	if titleErr != nil {
		fmt.Fprintf(d.out, "  Could not extract title: %v\n", titleErr)
	}

	if err := errors.Join(markerErr, titleErr); err != nil {
		d.logger.Debug("automatic extraction incomplete",
			"path", path,
			"marker_error", markerErr,
			"title_error", titleErr)
		return notes.Inputs{}, err
	}

	return notes.Inputs{Note: marker.Note, Level: marker.Level, Title: title}, nil
}

// canFallBack reports whether every failure in err is one the user can resolve
// by typing the inputs
func canFallBack(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !canFallBack(e) {
				return false
			}
		}
		return true
	}
	return pdferrors.IsRecoverable(err)
}

func failed(res FileResult, err error) FileResult {
	res.State = StateFailed
	res.Reason = err.Error()
	return res
}
