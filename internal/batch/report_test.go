package batch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/a3tai/pdf-retitle/internal/notes"
)

func sampleReport() *Report {
	r := &Report{OutputDir: "out"}
	in := notes.Inputs{Note: "3", Level: "7", Title: "Review"}
	art := in.Artifact("out")
	r.add(FileResult{Path: "a.pdf", State: StateWritten, Inputs: &in, Artifact: &art, Pages: 3})
	r.add(FileResult{Path: "b.pdf", State: StateFailed, Reason: "[MALFORMED_INPUT] failed to open PDF"})
	r.add(FileResult{Path: "c.pdf", State: StateSkipped, Reason: "manual input declined"})
	return r
}

func TestReport_Counts(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, []Failure{{Path: "b.pdf", Message: "[MALFORMED_INPUT] failed to open PDF"}}, r.Failures())
	assert.Equal(t, []Failure{{Path: "c.pdf", Message: "manual input declined"}}, r.Skipped())
}

func TestReport_DryRunCountsNamed(t *testing.T) {
	r := &Report{DryRun: true}
	r.add(FileResult{Path: "a.pdf", State: StateNamed})
	r.add(FileResult{Path: "b.pdf", State: StateParsed})

	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Succeeded)
}

func TestReport_Print(t *testing.T) {
	var buf bytes.Buffer
	sampleReport().Print(&buf)

	want := "\n" + "==================================================" + "\n" +
		"Completed: 1/3 files processed\n" +
		"\nFailed files:\n" +
		"b.pdf: [MALFORMED_INPUT] failed to open PDF\n" +
		"\nSkipped files:\n" +
		"c.pdf: manual input declined\n"
	assert.Equal(t, want, buf.String())
}

func TestReport_PrintAllSucceeded(t *testing.T) {
	r := &Report{}
	r.add(FileResult{Path: "a.pdf", State: StateWritten})

	var buf bytes.Buffer
	r.Print(&buf)

	assert.Contains(t, buf.String(), "Completed: 1/1 files processed")
	assert.NotContains(t, buf.String(), "Failed files:")
	assert.NotContains(t, buf.String(), "Skipped files:")
}

func TestReport_WriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	r := sampleReport()
	r.SkippedInputs = []Failure{{Path: "missing/*.pdf", Message: "no matches found for: missing/*.pdf"}}

	require.NoError(t, r.WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "out", got["output_dir"])
	assert.Equal(t, 3, got["total"])
	assert.Equal(t, 1, got["succeeded"])

	results, ok := got["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)
	first := results[0].(map[string]any)
	assert.Equal(t, "written", first["state"])
	assert.Equal(t, "03_07_review.pdf", first["artifact"].(map[string]any)["filename"])

	assert.Len(t, got["skipped_inputs"], 1)
}

func TestReport_WriteYAML_BadPath(t *testing.T) {
	err := sampleReport().WriteYAML(filepath.Join(t.TempDir(), "missing", "report.yaml"))
	assert.Error(t, err)
}
