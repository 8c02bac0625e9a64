package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/a3tai/pdf-retitle/internal/notes"
)

// Prompter asks the user a single question and returns the answer line
type Prompter interface {
	Prompt(question string) (string, error)
}

// LinePrompter reads answers line by line from in and writes questions to out
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter over a terminal or any line-based stream
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt writes question and returns the next input line without its newline
func (p *LinePrompter) Prompt(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// DeclinePrompter answers "n" to every question. It backs --no-prompt.
type DeclinePrompter struct{}

// Prompt always declines
func (DeclinePrompter) Prompt(string) (string, error) {
	return "n", nil
}

// askManualInputs runs the manual fallback dialogue for one file. ok is false
// when the user declines, input ends, or any answer is unusable.
func askManualInputs(p Prompter, out io.Writer, name string) (in notes.Inputs, ok bool) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(out, "\n%s\nCould not auto-extract from: %s\n%s\n", rule, name, rule)

	answer, err := p.Prompt("Enter values manually? (y/n): ")
	if err != nil || strings.ToLower(strings.TrimSpace(answer)) != "y" {
		fmt.Fprintln(out, "Skipping file...")
		return notes.Inputs{}, false
	}

	fields := []struct {
		question string
		dst      *string
	}{
		{"Note number: ", &in.Note},
		{"Level number: ", &in.Level},
		{"Title: ", &in.Title},
	}
	for _, f := range fields {
		answer, err := p.Prompt(f.question)
		if err != nil {
			fmt.Fprintln(out, "Invalid input. Skipping file...")
			return notes.Inputs{}, false
		}
		*f.dst = strings.TrimSpace(answer)
	}

	if err := in.Validate(); err != nil {
		fmt.Fprintln(out, "Invalid input. Skipping file...")
		return notes.Inputs{}, false
	}

	return in, true
}
