package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
	"github.com/a3tai/pdf-retitle/internal/pdf/pdftest"
)

const testMaxFileSize = 10 * 1024 * 1024

func openTestDoc(t *testing.T, d pdftest.Doc) *Document {
	t.Helper()

	path := pdftest.WriteFile(t, t.TempDir(), "doc.pdf", d)
	doc, err := NewReader(testMaxFileSize).Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

func TestReader_Open(t *testing.T) {
	tempDir := t.TempDir()

	validPath := pdftest.WriteFile(t, tempDir, "valid.pdf", pdftest.Doc{
		Pages: []pdftest.Page{{Texts: []pdftest.Text{pdftest.Marker("3", "7")}}},
	})

	garbagePath := filepath.Join(tempDir, "garbage.pdf")
	require.NoError(t, os.WriteFile(garbagePath, []byte("%PDF-1.4\nthis is not really a pdf"), 0o644))

	txtPath := filepath.Join(tempDir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("Note 1 Level 1"), 0o644))

	tests := []struct {
		name     string
		path     string
		wantErr  bool
		wantType pdferrors.ErrorType
	}{
		{name: "valid document", path: validPath},
		{name: "empty path", path: "", wantErr: true, wantType: pdferrors.ErrorTypeMalformedInput},
		{name: "missing file", path: filepath.Join(tempDir, "missing.pdf"), wantErr: true, wantType: pdferrors.ErrorTypeMalformedInput},
		{name: "not a pdf extension", path: txtPath, wantErr: true, wantType: pdferrors.ErrorTypeMalformedInput},
		{name: "broken structure", path: garbagePath, wantErr: true, wantType: pdferrors.ErrorTypeMalformedInput},
	}

	reader := NewReader(testMaxFileSize)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := reader.Open(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, doc)
				assert.Equal(t, tt.wantType, pdferrors.TypeOf(err))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, doc)
			assert.Equal(t, tt.path, doc.Path)
			assert.NoError(t, doc.Close())
			assert.NoError(t, doc.Close(), "second close is a no-op")
		})
	}
}

func TestDocument_FirstPage(t *testing.T) {
	doc := openTestDoc(t, pdftest.Doc{
		Pages: []pdftest.Page{
			{Texts: []pdftest.Text{
				pdftest.Marker("3", "7"),
				pdftest.Heading("Review", 24),
				{S: "Body copy", Size: 11, X: 72, Y: 600},
			}},
			{Texts: []pdftest.Text{pdftest.Heading("Second page", 40)}},
		},
	})

	assert.Equal(t, 2, doc.PageCount())

	page, err := doc.FirstPage()
	require.NoError(t, err)

	assert.Equal(t, "Note 3 Level 7\nReview\nBody copy", page.Text)

	assert.Equal(t, []TextFragment{
		{Text: "Note 3 Level 7", FontSize: 10},
		{Text: "Review", FontSize: 24},
		{Text: "Body copy", FontSize: 11},
	}, page.Fragments)
}

func TestDocument_FirstPage_KernedMarker(t *testing.T) {
	doc := openTestDoc(t, pdftest.Doc{
		Pages: []pdftest.Page{{Texts: []pdftest.Text{
			{Size: 10, X: 72, Y: 750, Ops: "[(Note) -250 (3) -250 (Level) -250 (7)] TJ"},
			pdftest.Heading("Review", 24),
		}}},
	})

	page, err := doc.FirstPage()
	require.NoError(t, err)
	assert.Equal(t, "Note 3 Level 7\nReview", page.Text)
}

func TestDocument_Page(t *testing.T) {
	doc := openTestDoc(t, pdftest.Doc{
		Pages: []pdftest.Page{
			{Texts: []pdftest.Text{pdftest.Marker("3", "7")}},
			{Texts: []pdftest.Text{pdftest.Heading("Second page", 40)}},
		},
	})

	page, err := doc.Page(2)
	require.NoError(t, err)
	assert.Equal(t, "Second page", page.Text)
	assert.Equal(t, []TextFragment{{Text: "Second page", FontSize: 40}}, page.Fragments)

	for _, n := range []int{0, 3} {
		_, err := doc.Page(n)
		require.Error(t, err, "page %d", n)
		assert.True(t, errors.Is(err, pdferrors.ErrExtraction))
	}
}

func TestDocument_FirstPage_NoPages(t *testing.T) {
	doc := openTestDoc(t, pdftest.Doc{})

	assert.Equal(t, 0, doc.PageCount())

	_, err := doc.FirstPage()
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrExtraction))
}

func TestDocument_Metadata(t *testing.T) {
	t.Run("info dictionary", func(t *testing.T) {
		doc := openTestDoc(t, pdftest.Doc{
			Pages: []pdftest.Page{{Texts: []pdftest.Text{pdftest.Marker("1", "1")}}},
			Info: map[string]string{
				"Title":      "Old title",
				"Author":     "Course Team",
				"CourseCode": "BIO-101",
			},
		})

		meta := doc.Metadata()
		assert.Equal(t, "Old title", meta[MetaTitle])
		assert.Equal(t, "Course Team", meta[MetaAuthor])
		assert.Equal(t, "BIO-101", meta["CourseCode"])
	})

	t.Run("no info dictionary", func(t *testing.T) {
		doc := openTestDoc(t, pdftest.Doc{
			Pages: []pdftest.Page{{Texts: []pdftest.Text{pdftest.Marker("1", "1")}}},
		})

		meta := doc.Metadata()
		assert.NotNil(t, meta)
		assert.Empty(t, meta)
	})
}

func TestReader_FileSizeLimit(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "doc.pdf", pdftest.Doc{
		Pages: []pdftest.Page{{Texts: []pdftest.Text{pdftest.Heading(strings.Repeat("x", 200), 12)}}},
	})

	_, err := NewReader(64).Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}
