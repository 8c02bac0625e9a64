package notes

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Inputs are the three values a document is named from
type Inputs struct {
	Note  string `json:"note" yaml:"note"`
	Level string `json:"level" yaml:"level"`
	Title string `json:"title" yaml:"title"`
}

// Artifact describes the output a set of Inputs maps to
type Artifact struct {
	Filename      string `json:"filename" yaml:"filename"`
	DocumentTitle string `json:"document_title" yaml:"document_title"`
	Path          string `json:"path" yaml:"path"`
}

// Validate checks that note and level are numeric and that the title is not blank
func (in Inputs) Validate() error {
	if !isDigits(in.Note) {
		return fmt.Errorf("note number must be numeric: %q", in.Note)
	}
	if !isDigits(in.Level) {
		return fmt.Errorf("level number must be numeric: %q", in.Level)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	return nil
}

// Artifact derives the output filename, document title and path inside outputDir
func (in Inputs) Artifact(outputDir string) Artifact {
	name := Filename(in.Note, in.Level, in.Title)
	return Artifact{
		Filename:      name,
		DocumentTitle: DocumentTitle(in.Note, in.Level, in.Title),
		Path:          filepath.Join(outputDir, name),
	}
}

// ZeroPad2 left-pads s with zeros to at least two characters.
// Longer strings are returned unchanged.
func ZeroPad2(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

// Filename returns "NN_MM_lower_case_title.pdf"
func Filename(note, level, title string) string {
	name := ZeroPad2(note) + "_" + ZeroPad2(level) + "_" + strings.ToLower(title)
	return strings.ReplaceAll(name, " ", "_") + ".pdf"
}

// DocumentTitle returns "NN MM Title Cased Title"
func DocumentTitle(note, level, title string) string {
	return ZeroPad2(note) + " " + ZeroPad2(level) + " " + TitleCase(title)
}

// TitleCase upper-cases the first letter of every whitespace separated word and
// lower-cases the rest. Whitespace is kept as is.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	wordStart := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			wordStart = true
			b.WriteRune(r)
		case wordStart:
			wordStart = false
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
