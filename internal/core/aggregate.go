package core

import "fmt"

// Aggregate derives all summary statistics from a triage list. It holds no state; call it
// again whenever fresh numbers are needed.
func Aggregate(list []MessageSummary) AggregateStats {
	return AggregateStats{
		Total:        len(list),
		Histogram:    CategoryHistogram(list),
		RiskSeries:   RiskSeries(list),
		MeanURLCount: MeanURLCount(list),
	}
}

// CategoryHistogram counts entries per known category. Entries whose category is not in
// the closed set are left out rather than counted as Safe.
func CategoryHistogram(list []MessageSummary) []CategoryCount {
	hist := make([]CategoryCount, len(Categories))
	for i, c := range Categories {
		hist[i].Category = c
	}
	for _, m := range list {
		for i := range hist {
			if hist[i].Category == m.Analysis.Category {
				hist[i].Count++
				break
			}
		}
	}
	return hist
}

// RiskSeries returns one point per entry in list order; positions are 1-based
func RiskSeries(list []MessageSummary) []RiskPoint {
	series := make([]RiskPoint, len(list))
	for i, m := range list {
		series[i] = RiskPoint{
			Position:  i + 1,
			Label:     fmt.Sprintf("#%d", i+1),
			RiskScore: m.Analysis.RiskScore,
		}
	}
	return series
}

// MeanURLCount is the arithmetic mean of url_count, 0 for an empty list
func MeanURLCount(list []MessageSummary) float64 {
	if len(list) == 0 {
		return 0
	}
	total := 0
	for _, m := range list {
		total += m.Analysis.URLCount
	}
	return float64(total) / float64(len(list))
}
