// Package writer produces retitled copies of PDF documents.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"

	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
)

// Result describes a written document
type Result struct {
	Path      string `json:"path" yaml:"path"`
	PageCount int    `json:"page_count" yaml:"page_count"`
	Title     string `json:"title" yaml:"title"`
}

// Writer copies documents with an updated title entry
type Writer struct {
	conf *model.Configuration
}

// NewWriter creates a Writer that reads inputs in relaxed validation mode and
// writes classic cross-reference tables. pdfcpu's user configuration directory
// is not used.
func NewWriter() *Writer {
	api.DisableConfigDir()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	return &Writer{conf: conf}
}

// Rewrite copies every page of the PDF at sourcePath into outputPath and sets
// its Title to title. All other information dictionary entries, Producer and
// the dates included, are kept as they were.
// The output is written to a temporary file in the same directory and renamed
// into place, so a failed write leaves no partial file behind.
func (w *Writer) Rewrite(sourcePath, outputPath, title string) (*Result, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeIO, "cannot open source", err).WithFile(sourcePath)
	}
	defer src.Close()

	ctx, err := api.ReadValidateAndOptimize(src, w.conf)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeWrite, "failed to load document for rewriting", err).
			WithFile(sourcePath)
	}

	info, err := retitledInfo(ctx, title)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeWrite, "failed to update metadata", err).
			WithFile(sourcePath)
	}

	if err := writeAtomic(ctx, info, outputPath); err != nil {
		return nil, err.WithFile(sourcePath)
	}

	return &Result{
		Path:      outputPath,
		PageCount: ctx.PageCount,
		Title:     title,
	}, nil
}

// retitledInfo installs a new information dictionary carrying title and every
// other entry of the existing one, with indirect values resolved. It returns a
// copy of that dictionary, since pdfcpu stamps its own Producer and dates onto
// the installed one while writing.
func retitledInfo(ctx *model.Context, title string) (types.Dict, error) {
	info := types.NewDict()
	if ctx.Info != nil {
		d, err := ctx.DereferenceDict(*ctx.Info)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference info dictionary: %w", err)
		}
		for k, v := range d {
			o, err := ctx.Dereference(v)
			if err != nil {
				return nil, fmt.Errorf("failed to dereference info entry %s: %w", k, err)
			}
			if o != nil {
				info.Insert(k, o.Clone())
			}
		}
	}

	value, err := encodeText(title)
	if err != nil {
		return nil, err
	}
	info.Update("Title", value)

	ir, err := ctx.IndRefForNewObject(info.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to add info dictionary: %w", err)
	}
	ctx.Info = ir
	ctx.Title = title

	return info, nil
}

// restoreInfo appends an incremental update to f that replaces the information
// dictionary written by api.WriteContext with info. The update holds a single
// object and chains to the previous cross-reference table.
func restoreInfo(ctx *model.Context, info types.Dict, f *os.File) error {
	entry, ok := ctx.FindTableEntryLight(ctx.Info.ObjectNumber.Value())
	if !ok {
		return fmt.Errorf("info dictionary object %d missing", ctx.Info.ObjectNumber.Value())
	}
	entry.Object = info

	prevXRef := ctx.Write.Offset
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}

	ctx.ResetWriteContext()
	ctx.Write.Increment = true
	ctx.Write.Offset = end
	ctx.Write.OffsetPrevXRef = &prevXRef
	ctx.Write.ObjNrs = []int{ctx.Info.ObjectNumber.Value()}

	return api.WriteIncrement(ctx, f)
}

// encodeText encodes s as a PDF text string: plain bytes for ASCII, UTF-16BE
// with a byte order mark otherwise
func encodeText(s string) (types.HexLiteral, error) {
	if isASCII(s) {
		return types.NewHexLiteral([]byte(s)), nil
	}

	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	utf16, err := enc.String(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode title: %w", err)
	}
	return types.NewHexLiteral([]byte(utf16)), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func writeAtomic(ctx *model.Context, info types.Dict, outputPath string) *pdferrors.PDFError {
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".retitle-*.tmp")
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "creating temp file", err)
	}
	tmpPath := tmp.Name()

	writeErr := api.WriteContext(ctx, tmp)
	if writeErr == nil {
		writeErr = restoreInfo(ctx, info, tmp)
	}
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return pdferrors.WrapError(pdferrors.ErrorTypeWrite, "writing output PDF", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "closing temp file", closeErr)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "renaming temp file", err)
	}

	return nil
}
