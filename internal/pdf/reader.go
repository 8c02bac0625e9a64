package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
)

// Reader opens source documents after validating them
type Reader struct {
	validator *Validator
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		validator: NewValidator(maxFileSize),
	}
}

// Document is a read-only handle on a parsed source PDF
type Document struct {
	Path string

	file   *os.File
	reader *pdf.Reader
}

// Open validates and parses the PDF at path
func (r *Reader) Open(path string) (doc *Document, err error) {
	if err := r.validator.Validate(path); err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = pdferrors.WrapError(pdferrors.ErrorTypeMalformedInput, "failed to open PDF",
				fmt.Errorf("%v", rec)).WithFile(path)
		}
	}()

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedInput, "failed to open PDF", err).
			WithFile(path)
	}

	return &Document{Path: path, file: f, reader: pdfReader}, nil
}

// Close releases the underlying file
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// PageCount returns the number of pages declared by the page tree
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// FirstPage extracts the plain text and the sized text fragments of page one
func (d *Document) FirstPage() (*PageText, error) {
	return d.Page(1)
}

// Page extracts the plain text and the sized text fragments of page n, counting
// from one
func (d *Document) Page(n int) (*PageText, error) {
	if n < 1 || n > d.reader.NumPage() {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeExtraction,
			fmt.Sprintf("page %d out of range (document has %d pages)", n, d.reader.NumPage())).
			WithFile(d.Path)
	}

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeExtraction,
			fmt.Sprintf("page %d not found", n)).WithFile(d.Path)
	}

	text, err := ExtractPage(page)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeExtraction,
			"failed while extracting text from PDF", err).WithFile(d.Path)
	}

	return text, nil
}

// Metadata returns a copy of the document information dictionary.
// A document without one yields an empty map.
func (d *Document) Metadata() (meta Metadata) {
	meta = make(Metadata)

	defer func() {
		// ledongthuc/pdf panics on some malformed dictionaries; keep what was read
		_ = recover()
	}()

	info := d.reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return meta
	}

	for _, key := range info.Keys() {
		v := info.Key(key)
		switch v.Kind() {
		case pdf.String:
			meta[key] = strings.TrimSpace(v.Text())
		case pdf.Name:
			meta[key] = v.Name()
		case pdf.Null:
		default:
			meta[key] = v.String()
		}
	}

	return meta
}
