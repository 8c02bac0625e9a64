package notes

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/pdf-retitle/internal/pdf"
	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
)

// ExtractTitle joins the fragments drawn at the largest effective font size.
//
// Fragments whose text is blank are ignored. Sizes are compared exactly, so only
// fragments with identical sizes are joined. Order follows the content stream and
// the result is NFKC-normalized so typographic ligatures fold into plain letters.
func ExtractTitle(fragments []pdf.TextFragment) (string, error) {
	usable := make([]pdf.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		text := strings.TrimSpace(f.Text)
		if text == "" || math.IsNaN(f.FontSize) || math.IsInf(f.FontSize, 0) {
			continue
		}
		usable = append(usable, pdf.TextFragment{Text: text, FontSize: f.FontSize})
	}

	if len(usable) == 0 {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeNoText,
			"no text with size information found")
	}

	maxSize := usable[0].FontSize
	for _, f := range usable[1:] {
		if f.FontSize > maxSize {
			maxSize = f.FontSize
		}
	}

	parts := make([]string, 0, len(usable))
	for _, f := range usable {
		if f.FontSize == maxSize {
			parts = append(parts, f.Text)
		}
	}

	return norm.NFKC.String(strings.Join(parts, " ")), nil
}
