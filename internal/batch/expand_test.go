package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))
	return path
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()

	b := touch(t, filepath.Join(dir, "docs", "b.pdf"))
	a := touch(t, filepath.Join(dir, "docs", "a.pdf"))
	touch(t, filepath.Join(dir, "docs", "readme.txt"))
	touch(t, filepath.Join(dir, "docs", "nested", "deep.pdf"))
	single := touch(t, filepath.Join(dir, "single.txt"))
	bracketed := touch(t, filepath.Join(dir, "[draft].pdf"))

	tests := []struct {
		name         string
		inputs       []string
		wantFiles    []string
		wantProblems int
	}{
		{
			name:      "directory is not recursive and sorted",
			inputs:    []string{filepath.Join(dir, "docs")},
			wantFiles: []string{a, b},
		},
		{
			name:      "existing file used as is",
			inputs:    []string{single},
			wantFiles: []string{single},
		},
		{
			name:      "glob against parent",
			inputs:    []string{filepath.Join(dir, "docs", "?.pdf")},
			wantFiles: []string{a, b},
		},
		{
			name:         "glob without matches",
			inputs:       []string{filepath.Join(dir, "docs", "*.docx")},
			wantProblems: 1,
		},
		{
			name:         "invalid pattern",
			inputs:       []string{filepath.Join(dir, "docs", "[*.pdf")},
			wantProblems: 1,
		},
		{
			name:      "bracketed name used as is",
			inputs:    []string{bracketed},
			wantFiles: []string{bracketed},
		},
		{
			name:         "bracket alone is not a pattern",
			inputs:       []string{filepath.Join(dir, "docs", "[ab].pdf")},
			wantProblems: 1,
		},
		{
			name:         "missing path",
			inputs:       []string{filepath.Join(dir, "missing.pdf")},
			wantProblems: 1,
		},
		{
			name:         "problems do not stop expansion",
			inputs:       []string{filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "docs")},
			wantFiles:    []string{a, b},
			wantProblems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandInputs(tt.inputs)
			assert.Equal(t, tt.wantFiles, got.Files)
			assert.Len(t, got.Problems, tt.wantProblems)
		})
	}
}

func TestExpandInputs_ProblemMessages(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.pdf")
	pattern := filepath.Join(dir, "*.pdf")

	got := ExpandInputs([]string{missing, pattern})

	require.Len(t, got.Problems, 2)
	assert.Equal(t, missing, got.Problems[0].Path)
	assert.Contains(t, got.Problems[0].Message, "not found (skipping)")
	assert.Equal(t, pattern, got.Problems[1].Path)
	assert.Contains(t, got.Problems[1].Message, "no matches found for:")
}

func TestExpandInputs_BracketReportedMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	input := filepath.Join(dir, "[ab].pdf")

	got := ExpandInputs([]string{input})

	assert.Empty(t, got.Files)
	require.Len(t, got.Problems, 1)
	assert.Contains(t, got.Problems[0].Message, "not found (skipping)")
}

func TestExpandInputs_GlobFallsBackToWorkingDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "local.pdf"))

	t.Chdir(dir)

	got := ExpandInputs([]string{filepath.Join("no-such-parent", "*.pdf")})
	assert.Equal(t, []string{"local.pdf"}, got.Files)
	assert.Empty(t, got.Problems)
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, "processed_pdfs", DefaultOutputDir(nil, "processed_pdfs"))
	assert.Equal(t,
		filepath.Join("in", "docs", "processed_pdfs"),
		DefaultOutputDir([]string{filepath.Join("in", "docs", "a.pdf"), "other/b.pdf"}, "processed_pdfs"))
}

func TestIsPathWithinDirectory(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"direct child", filepath.Join(base, "01_01_a.pdf"), true},
		{"nested child", filepath.Join(base, "sub", "a.pdf"), true},
		{"the directory itself", base, false},
		{"parent traversal", filepath.Join(base, "..", "a.pdf"), false},
		{"traversal hidden in a name", filepath.Join(base, "01_01_x", "..", "..", "evil.pdf"), false},
		{"sibling with common prefix", base + "-other" + string(filepath.Separator) + "a.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isPathWithinDirectory(tt.path, base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
