package analytics

// DayCount is the message count for a weekday. Messages is nil when the
// weekday never occurs in the scope.
type DayCount struct {
	Day      string `json:"day"`
	Messages *int   `json:"messages"`
}

// MonthCount is the message count for a calendar month name, pooled across
// years. Messages is nil when the month never occurs in the scope.
type MonthCount struct {
	Month    string `json:"month"`
	Messages *int   `json:"messages"`
}

// Heatmap is a weekday by hour grid: rows Monday..Sunday, columns hour 0..23.
type Heatmap [7][24]int

// Total returns the sum of every cell.
func (h *Heatmap) Total() int {
	total := 0
	for _, row := range h {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// ActivityResult contains the weekday, month and heatmap distributions.
type ActivityResult struct {
	BusyDays   []DayCount   `json:"busy_days"`
	BusyMonths []MonthCount `json:"busy_months"`
	Heatmap    Heatmap      `json:"heatmap"`
}

// ActivityAnalyzer builds activity distributions. Weekday and month rows keep
// a slot for every label but leave missing labels empty, while the heatmap is
// fully populated with zeros.
type ActivityAnalyzer struct{}

// Analyze processes the scoped records and returns the distributions.
func (a *ActivityAnalyzer) Analyze(log *MessageLog, scope string) (*ActivityResult, error) {
	var days [7]int
	var months [12]int
	result := &ActivityResult{}

	for r := range scoped(log, scope) {
		d := weekdayIndex[r.DayName]
		days[d]++
		months[monthIndex[r.Month]]++
		result.Heatmap[d][r.Hour]++
	}

	result.BusyDays = make([]DayCount, len(weekdayOrder))
	for i, name := range weekdayOrder {
		result.BusyDays[i] = DayCount{Day: name, Messages: countOrNil(days[i])}
	}
	result.BusyMonths = make([]MonthCount, len(monthOrder))
	for i, name := range monthOrder {
		result.BusyMonths[i] = MonthCount{Month: name, Messages: countOrNil(months[i])}
	}
	return result, nil
}

func countOrNil(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
