// Package notes turns first-page content into the note/level key and the title
// used to name a retitled document.
package notes

import (
	"regexp"
	"strings"

	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
)

// markerPattern matches "Note <n> Level <m>" with one or two digit numbers
var markerPattern = regexp.MustCompile(`[Nn]ote\s+(\d\d?)\s+[Ll]evel\s+(\d\d?)`)

// Marker holds the note and level numbers exactly as they appear in the text
type Marker struct {
	Note  string `json:"note" yaml:"note"`
	Level string `json:"level" yaml:"level"`
}

// ParseMarker returns the first note/level marker found in text.
// Leading zeros are kept; padding happens when names are generated.
func ParseMarker(text string) (Marker, error) {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return Marker{}, pdferrors.NewPDFError(pdferrors.ErrorTypeNotFound,
			"could not find 'Note X Level Y' pattern")
	}

	return Marker{
		Note:  strings.TrimSpace(m[1]),
		Level: strings.TrimSpace(m[2]),
	}, nil
}
