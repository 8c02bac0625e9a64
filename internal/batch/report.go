package batch

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/pdf-retitle/internal/notes"
)

// State is the position of one input file in the pipeline
type State string

const (
	StatePending State = "pending"
	StateParsed  State = "parsed"
	StateNamed   State = "named"
	StateWritten State = "written"
	StateSkipped State = "skipped"
	StateFailed  State = "failed"
)

// Failure pairs an input path with the reason it was not processed
type Failure struct {
	Path    string `yaml:"path"`
	Message string `yaml:"message"`
}

// FileResult records what happened to one input file
type FileResult struct {
	Path     string          `yaml:"path"`
	State    State           `yaml:"state"`
	Manual   bool            `yaml:"manual,omitempty"`
	Inputs   *notes.Inputs   `yaml:"inputs,omitempty"`
	Artifact *notes.Artifact `yaml:"artifact,omitempty"`
	Pages    int             `yaml:"pages,omitempty"`
	Reason   string          `yaml:"reason,omitempty"`
}

// Report accumulates the outcome of a batch
type Report struct {
	OutputDir     string       `yaml:"output_dir"`
	DryRun        bool         `yaml:"dry_run"`
	Total         int          `yaml:"total"`
	Succeeded     int          `yaml:"succeeded"`
	Results       []FileResult `yaml:"results"`
	SkippedInputs []Failure    `yaml:"skipped_inputs,omitempty"`
}

func (r *Report) add(res FileResult) {
	r.Total++
	if res.State == StateWritten || (r.DryRun && res.State == StateNamed) {
		r.Succeeded++
	}
	r.Results = append(r.Results, res)
}

// Failures lists every file that failed, in processing order
func (r *Report) Failures() []Failure {
	return r.inState(StateFailed)
}

// Skipped lists every file that was skipped, in processing order
func (r *Report) Skipped() []Failure {
	return r.inState(StateSkipped)
}

func (r *Report) inState(state State) []Failure {
	var out []Failure
	for _, res := range r.Results {
		if res.State == state {
			out = append(out, Failure{Path: res.Path, Message: res.Reason})
		}
	}
	return out
}

// Print writes the end-of-run summary
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(w, "Completed: %d/%d files processed\n", r.Succeeded, r.Total)

	printList(w, "Failed files:", r.Failures())
	printList(w, "Skipped files:", r.Skipped())
}

func printList(w io.Writer, heading string, entries []Failure) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", heading)
	for _, f := range entries {
		fmt.Fprintf(w, "%s: %s\n", f.Path, f.Message)
	}
}

// WriteYAML saves the report to path
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
