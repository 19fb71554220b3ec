package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/core"
)

func sampleReport() *core.Report {
	return &core.Report{
		TotalSegments:    2,
		SuspectSegments:  1,
		OriginalSegments: 1,
		Threshold:        0.75,
		Segments: []core.SegmentResult{
			{
				Segment:    core.Segment{ID: 1, Text: "a copied passage", WordCount: 3},
				Similarity: 0.92,
				Label:      core.LabelSuspect,
				BestMatch: &core.Candidate{
					Text:   "the matched source text",
					URL:    "https://example.org/source",
					Title:  "Source Article",
					Origin: core.OriginSearch,
				},
			},
			{
				Segment:    core.Segment{ID: 2, Text: "an original thought", WordCount: 3},
				Similarity: 0.1,
				Label:      core.LabelOriginal,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"1", "a copied passage", "3",
		"the matched source text", "0.92", "suspect",
		"https://example.org/source", "Source Article",
	}, rows[1])
	assert.Equal(t, []string{
		"2", "an original thought", "3",
		"", "0.1", "original", "", "",
	}, rows[2])
}

func TestWriteCSV_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &core.Report{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, SaveCSV(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "segment_id")
	assert.Contains(t, string(data), "a copied passage")
}
