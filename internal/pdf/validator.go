package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
)

// Validator handles PDF input validation
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Validate checks that path names a readable, non-empty PDF within the size limit
func (v *Validator) Validate(filePath string) error {
	if filePath == "" {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput, "path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
			fmt.Sprintf("file does not exist: %s", filePath)).WithFile(filePath)
	}
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "cannot access file", err).WithFile(filePath)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return err
	}

	return v.checkHeader(filePath)
}

// ValidateFileInfo performs the checks that need no file access
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
			fmt.Sprintf("path is a directory, not a file: %s", filePath)).WithFile(filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
			fmt.Sprintf("file is not a PDF: %s", filePath)).WithFile(filePath)
	}

	if fileInfo.Size() == 0 {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
			fmt.Sprintf("file is empty: %s", filePath)).WithFile(filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)).
			WithFile(filePath)
	}

	return nil
}

func (v *Validator) checkHeader(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "cannot open file", err).WithFile(filePath)
	}
	defer f.Close()

	header := make([]byte, 5)
	if _, err := f.Read(header); err != nil || !bytes.Equal(header, []byte("%PDF-")) {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
			fmt.Sprintf("invalid PDF header: %s", filePath)).WithFile(filePath)
	}

	return nil
}
