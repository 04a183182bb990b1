package analytics

import "github.com/shopspring/decimal"

// EmojiCount is an emoji and how often it appeared.
type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// EmojiSlice is one slice of the emoji share chart.
type EmojiSlice struct {
	Emoji   string          `json:"emoji"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

// EmojiAnalyzer counts emoji code points. No sender or media filtering is
// applied beyond the scope.
type EmojiAnalyzer struct {
	Set  EmojiSet // defaults to NewEmojiSet()
	TopN int      // defaults to DefaultTopEmojis
}

// Analyze returns the most used emoji, ties broken by first occurrence.
// The result is empty, never nil, when the scope has no emoji.
func (a *EmojiAnalyzer) Analyze(log *MessageLog, scope string) ([]EmojiCount, error) {
	set := a.Set
	if set == nil {
		set = NewEmojiSet()
	}
	n := a.TopN
	if n <= 0 {
		n = DefaultTopEmojis
	}

	counter := newFrequencyCounter()
	for r := range scoped(log, scope) {
		for _, c := range r.Text {
			if set.Contains(c) {
				counter.Add(string(c))
			}
		}
	}

	top := counter.Top(n)
	out := make([]EmojiCount, len(top))
	for i, kc := range top {
		out[i] = EmojiCount{Emoji: kc.Key, Count: kc.Count}
	}
	return out, nil
}

// EmojiShare turns the first k entries of a ranked emoji list into chart
// slices whose percentages are relative to those k entries and rounded to one
// decimal place. k <= 0 means DefaultEmojiShareSlices.
func EmojiShare(top []EmojiCount, k int) []EmojiSlice {
	if k <= 0 {
		k = DefaultEmojiShareSlices
	}
	top = top[:min(k, len(top))]

	total := 0
	for _, e := range top {
		total += e.Count
	}
	out := make([]EmojiSlice, len(top))
	if total == 0 {
		return out
	}
	denom := decimal.NewFromInt(int64(total))
	hundred := decimal.NewFromInt(100)
	for i, e := range top {
		out[i] = EmojiSlice{
			Emoji:   e.Emoji,
			Count:   e.Count,
			Percent: decimal.NewFromInt(int64(e.Count)).Mul(hundred).Div(denom).Round(1),
		}
	}
	return out
}
