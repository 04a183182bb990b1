package analytics

import "strings"

// StatsResult contains the headline counters for a scope.
type StatsResult struct {
	Messages int `json:"messages"`
	Words    int `json:"words"`
	Media    int `json:"media"`
	Links    int `json:"links"`
}

// StatsAnalyzer counts messages, words, media placeholders and links.
// Notification records are included.
type StatsAnalyzer struct {
	MediaPlaceholder string       // defaults to DefaultMediaPlaceholder
	Links            LinkDetector // defaults to the relaxed URL matcher
}

// Analyze processes the scoped records and returns the counters.
// It never fails; an empty scope yields zeros.
func (a *StatsAnalyzer) Analyze(log *MessageLog, scope string) (*StatsResult, error) {
	placeholder := orDefault(a.MediaPlaceholder, DefaultMediaPlaceholder)
	links := a.Links
	if links == nil {
		links = defaultLinkDetector()
	}

	result := &StatsResult{}
	for r := range scoped(log, scope) {
		result.Messages++
		result.Words += len(strings.Fields(r.Text))
		if strings.Contains(r.Text, placeholder) {
			result.Media++
		}
		result.Links += len(links.FindLinks(r.Text))
	}
	return result, nil
}
