package analytics

import (
	"sort"
	"strconv"
)

// MonthlyPoint is the message count for one (year, month) bucket.
type MonthlyPoint struct {
	Year     int    `json:"year"`
	Month    string `json:"month"`
	Label    string `json:"label"` // "<Month>-<Year>", e.g. "January-2024"
	Messages int    `json:"messages"`
}

// DailyPoint is the message count for one calendar day.
type DailyPoint struct {
	Date     Date `json:"date"`
	Messages int  `json:"messages"`
}

// TimelineResult holds both time series for a scope.
type TimelineResult struct {
	Monthly []MonthlyPoint `json:"monthly"`
	Daily   []DailyPoint   `json:"daily"`
}

// TimelineAnalyzer buckets messages by month and by day.
type TimelineAnalyzer struct{}

// Analyze returns both the monthly and the daily series.
func (a *TimelineAnalyzer) Analyze(log *MessageLog, scope string) (*TimelineResult, error) {
	return &TimelineResult{
		Monthly: a.Monthly(log, scope),
		Daily:   a.Daily(log, scope),
	}, nil
}

type yearMonth struct {
	year  int
	month string
}

// Monthly groups by (year, month name). Rows are ordered by year, then by
// month name compared as a string, so within a year "April" precedes
// "January". Consumers wanting calendar order must re-sort.
func (a *TimelineAnalyzer) Monthly(log *MessageLog, scope string) []MonthlyPoint {
	counts := make(map[yearMonth]int)
	for r := range scoped(log, scope) {
		counts[yearMonth{r.Year, r.Month}]++
	}

	points := make([]MonthlyPoint, 0, len(counts))
	for k, n := range counts {
		points = append(points, MonthlyPoint{
			Year:     k.year,
			Month:    k.month,
			Label:    k.month + "-" + strconv.Itoa(k.year),
			Messages: n,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})
	return points
}

// Daily groups by calendar date, ascending, one row per date present.
func (a *TimelineAnalyzer) Daily(log *MessageLog, scope string) []DailyPoint {
	counts := make(map[Date]int)
	for r := range scoped(log, scope) {
		counts[r.Date]++
	}

	points := make([]DailyPoint, 0, len(counts))
	for d, n := range counts {
		points = append(points, DailyPoint{Date: d, Messages: n})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
