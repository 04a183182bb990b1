package analytics

import "github.com/shopspring/decimal"

// LeaderboardSize is the number of senders on the leaderboard.
const LeaderboardSize = 5

// SenderCount is a sender's total message count.
type SenderCount struct {
	Sender   string `json:"sender"`
	Messages int    `json:"messages"`
}

// SenderShare is a sender's share of all messages, in percent rounded to
// two decimal places.
type SenderShare struct {
	Sender  string          `json:"sender"`
	Percent decimal.Decimal `json:"percent"`
}

// UsersResult ranks senders across the whole log.
type UsersResult struct {
	Leaderboard   []SenderCount `json:"leaderboard"`
	Contributions []SenderShare `json:"contributions"`
}

// UsersAnalyzer ranks senders by message count. It always looks at the full
// log, whatever scope the caller is viewing, and counts every sender
// including the notification sentinel.
type UsersAnalyzer struct{}

// Analyze returns the leaderboard and percentage table.
// Returns ErrNoData when the log is empty.
func (a *UsersAnalyzer) Analyze(log *MessageLog) (*UsersResult, error) {
	total := log.Len()
	if total == 0 {
		return nil, ErrNoData
	}

	counter := newFrequencyCounter()
	for r := range scoped(log, Overall) {
		counter.Add(r.Sender)
	}
	ranked := counter.Top(0)

	result := &UsersResult{
		Leaderboard:   make([]SenderCount, 0, min(len(ranked), LeaderboardSize)),
		Contributions: make([]SenderShare, 0, len(ranked)),
	}
	hundred := decimal.NewFromInt(100)
	denom := decimal.NewFromInt(int64(total))
	for i, kc := range ranked {
		if i < LeaderboardSize {
			result.Leaderboard = append(result.Leaderboard, SenderCount{Sender: kc.Key, Messages: kc.Count})
		}
		pct := decimal.NewFromInt(int64(kc.Count)).Mul(hundred).Div(denom).Round(2)
		result.Contributions = append(result.Contributions, SenderShare{Sender: kc.Key, Percent: pct})
	}
	return result, nil
}
