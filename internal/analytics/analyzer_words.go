package analytics

import "strings"

// Word cloud renderer settings.
const (
	CloudWidth       = 500
	CloudHeight      = 500
	CloudMinFontSize = 10
	CloudBackground  = "white"
)

// WordCount is a lower-cased token and its frequency.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CloudInput is the text corpus and settings handed to a word-cloud renderer.
type CloudInput struct {
	Text        string `json:"text"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MinFontSize int    `json:"min_font_size"`
	Background  string `json:"background"`
}

// WordsResult contains the frequency table and the cloud corpus.
type WordsResult struct {
	TopWords []WordCount `json:"top_words"`
	Cloud    CloudInput  `json:"cloud"`
}

// WordsAnalyzer builds word frequencies over human, non-media messages.
// Notification records and records containing the media placeholder are
// dropped before tokenizing.
type WordsAnalyzer struct {
	MediaPlaceholder   string // defaults to DefaultMediaPlaceholder
	NotificationSender string // defaults to DefaultNotificationSender
	TopN               int    // defaults to DefaultTopWords
}

// Analyze returns the top words and the cloud corpus for scope.
func (a *WordsAnalyzer) Analyze(log *MessageLog, scope string) (*WordsResult, error) {
	return &WordsResult{
		TopWords: a.TopWords(log, scope, a.TopN),
		Cloud:    a.CloudInput(log, scope),
	}, nil
}

// TopWords returns the n most frequent lower-cased whitespace tokens,
// ties broken by first occurrence. n <= 0 means DefaultTopWords.
func (a *WordsAnalyzer) TopWords(log *MessageLog, scope string, n int) []WordCount {
	if n <= 0 {
		n = DefaultTopWords
	}
	counter := newFrequencyCounter()
	for _, text := range a.texts(log, scope) {
		for _, w := range strings.Fields(strings.ToLower(text)) {
			counter.Add(w)
		}
	}

	top := counter.Top(n)
	out := make([]WordCount, len(top))
	for i, kc := range top {
		out[i] = WordCount{Word: kc.Key, Count: kc.Count}
	}
	return out
}

// CloudInput joins the remaining texts with single spaces.
func (a *WordsAnalyzer) CloudInput(log *MessageLog, scope string) CloudInput {
	return CloudInput{
		Text:        strings.Join(a.texts(log, scope), " "),
		Width:       CloudWidth,
		Height:      CloudHeight,
		MinFontSize: CloudMinFontSize,
		Background:  CloudBackground,
	}
}

func (a *WordsAnalyzer) texts(log *MessageLog, scope string) []string {
	placeholder := orDefault(a.MediaPlaceholder, DefaultMediaPlaceholder)
	sentinel := orDefault(a.NotificationSender, DefaultNotificationSender)

	var texts []string
	for r := range scoped(log, scope) {
		if r.Sender == sentinel || strings.Contains(r.Text, placeholder) {
			continue
		}
		texts = append(texts, r.Text)
	}
	return texts
}
