package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/poiesic/simcheck/core"
)

// csvHeader is the column layout of exported reports. Order is part of
// the export format.
var csvHeader = []string{
	"segment_id",
	"segment_text",
	"word_count",
	"best_match",
	"similarity_score",
	"label",
	"source_url",
	"source_title",
}

// WriteCSV writes one row per segment result.
func WriteCSV(w io.Writer, rep *core.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, result := range rep.Segments {
		row := []string{
			strconv.Itoa(result.Segment.ID),
			result.Segment.Text,
			strconv.Itoa(result.Segment.WordCount),
			"",
			strconv.FormatFloat(result.Similarity, 'f', -1, 64),
			result.Label.String(),
			"",
			"",
		}
		if result.BestMatch != nil {
			row[3] = result.BestMatch.Text
			row[6] = result.BestMatch.URL
			row[7] = result.BestMatch.Title
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the report to a file, creating or truncating it.
func SaveCSV(path string, rep *core.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
