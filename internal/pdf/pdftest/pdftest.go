// Package pdftest builds small, valid PDF files for tests.
//
// Every page draws its texts with Helvetica. Font "F1" uses WinAnsiEncoding;
// font "F2" declares no encoding, so readers fall back to PDFDocEncoding where
// byte 0x93 is the "fi" ligature.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Text is one text object on a page
type Text struct {
	S     string  // raw string bytes, escaped on output
	Font  string  // "F1" (default) or "F2"
	Size  float64 // Tf size
	Scale float64 // when non-zero, drawn with a "Scale 0 0 Scale X Y Tm" matrix
	X, Y  float64
	TJ    bool // draw with TJ instead of Tj

	// Ops, when set, replaces the text-showing operator and is written verbatim
	// after the positioning operator
	Ops string
}

// Page is a list of texts drawn in order
type Page struct {
	Texts []Text
}

// Doc describes a whole document
type Doc struct {
	Pages []Page
	Info  map[string]string // nil means no /Info dictionary
}

// Marker returns a small text carrying "Note n Level m"
func Marker(note, level string) Text {
	return Text{S: "Note " + note + " Level " + level, Size: 10, X: 72, Y: 750}
}

// Heading returns a text drawn at size
func Heading(s string, size float64) Text {
	return Text{S: s, Size: size, X: 72, Y: 700}
}

// Build serializes d as a PDF 1.4 file with a classic cross-reference table
func Build(d Doc) []byte {
	var objects []string

	nPages := len(d.Pages)
	pageObj := func(i int) int { return 5 + 2*i }
	contentObj := func(i int) int { return 6 + 2*i }

	kids := make([]string, nPages)
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", pageObj(i))
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), nPages),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)

	for i, p := range d.Pages {
		content := pageContent(p)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>", contentObj(i)),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	infoRef := ""
	if d.Info != nil {
		keys := make([]string, 0, len(d.Info))
		for k := range d.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString("<<")
		for _, k := range keys {
			fmt.Fprintf(&b, " /%s (%s)", k, escape(d.Info[k]))
		}
		b.WriteString(" >>")
		objects = append(objects, b.String())
		infoRef = fmt.Sprintf(" /Info %d 0 R", len(objects))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, infoRef, xref)

	return buf.Bytes()
}

// WriteFile builds d and writes it to dir/name
func WriteFile(t testing.TB, dir, name string, d Doc) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(d), 0o644); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

func pageContent(p Page) string {
	var b strings.Builder
	for _, t := range p.Texts {
		font := t.Font
		if font == "" {
			font = "F1"
		}

		b.WriteString("BT\n")
		fmt.Fprintf(&b, "/%s %s Tf\n", font, num(t.Size))
		if t.Scale != 0 {
			fmt.Fprintf(&b, "%s 0 0 %s %s %s Tm\n", num(t.Scale), num(t.Scale), num(t.X), num(t.Y))
		} else {
			fmt.Fprintf(&b, "%s %s Td\n", num(t.X), num(t.Y))
		}
		switch {
		case t.Ops != "":
			b.WriteString(t.Ops + "\n")
		case t.TJ:
			fmt.Fprintf(&b, "[(%s)] TJ\n", escape(t.S))
		default:
			fmt.Fprintf(&b, "(%s) Tj\n", escape(t.S))
		}
		b.WriteString("ET\n")
	}
	return b.String()
}

func num(f float64) string {
	return fmt.Sprintf("%g", f)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
