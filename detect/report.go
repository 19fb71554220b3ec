package detect

import (
	"math"

	"github.com/poiesic/simcheck/core"
)

// buildReport aggregates per-segment results into a document report.
// The suspect percentage is rounded to two decimal places and the
// average similarity to four, so reports compare cleanly across runs.
func buildReport(results []core.SegmentResult, threshold float64) *core.Report {
	report := &core.Report{
		TotalSegments: len(results),
		Threshold:     threshold,
		Segments:      results,
	}
	if len(results) == 0 {
		return report
	}

	var sum float64
	for _, result := range results {
		sum += result.Similarity
		if result.Label == core.LabelSuspect {
			report.SuspectSegments++
		} else {
			report.OriginalSegments++
		}
	}

	report.SuspectPercentage = roundTo(float64(report.SuspectSegments)/float64(report.TotalSegments)*100, 2)
	report.AvgSimilarity = roundTo(sum/float64(report.TotalSegments), 4)
	return report
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
