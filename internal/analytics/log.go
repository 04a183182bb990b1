package analytics

import (
	"fmt"
	"iter"
	"slices"
)

// Overall is the scope that selects every record in the log.
const Overall = "Overall"

// DefaultNotificationSender is the synthetic sender the parser assigns to
// group system events (joins, subject changes, and so on).
const DefaultNotificationSender = "group_notification"

// MessageLog is an ordered, read-only sequence of records in transcript order.
// It is safe for concurrent use by any number of analyzers.
type MessageLog struct {
	records []MessageRecord
}

// NewMessageLog validates records and returns a log holding a private copy.
func NewMessageLog(records []MessageRecord) (*MessageLog, error) {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return newMessageLogNoCopy(slices.Clone(records)), nil
}

// newMessageLogNoCopy wraps records the caller has just built and will not
// retain.
func newMessageLogNoCopy(records []MessageRecord) *MessageLog {
	return &MessageLog{records: records}
}

// Len returns the number of records.
func (l *MessageLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// Records returns a copy of every record in transcript order.
func (l *MessageLog) Records() []MessageRecord {
	return Filter(l, Overall)
}

// Senders returns the distinct senders in first-seen order, including the
// notification sentinel if present.
func (l *MessageLog) Senders() []string {
	var senders []string
	seen := make(map[string]bool)
	for _, r := range l.all() {
		if !seen[r.Sender] {
			seen[r.Sender] = true
			senders = append(senders, r.Sender)
		}
	}
	return senders
}

// Scopes returns the selectable scopes: Overall first, then every human
// sender sorted lexically. notificationSender is never offered; an empty
// value means DefaultNotificationSender.
func (l *MessageLog) Scopes(notificationSender string) []string {
	if notificationSender == "" {
		notificationSender = DefaultNotificationSender
	}
	var senders []string
	for _, s := range l.Senders() {
		if s != notificationSender && s != Overall {
			senders = append(senders, s)
		}
	}
	slices.Sort(senders)
	return append([]string{Overall}, senders...)
}

func (l *MessageLog) all() []MessageRecord {
	if l == nil {
		return nil
	}
	return l.records
}

// Filter returns the records visible under scope, in transcript order.
// Overall selects everything; any other value selects records whose sender
// equals it exactly. An unknown scope yields an empty slice. The result never
// aliases the log's storage.
func Filter(log *MessageLog, scope string) []MessageRecord {
	all := log.all()
	if scope == Overall {
		out := make([]MessageRecord, len(all))
		copy(out, all)
		return out
	}
	out := []MessageRecord{}
	for _, r := range all {
		if r.Sender == scope {
			out = append(out, r)
		}
	}
	return out
}

// scoped yields the records visible under scope without copying them.
// Analyzers use it in place of Filter; the yielded pointers must not be
// retained or modified.
func scoped(log *MessageLog, scope string) iter.Seq[*MessageRecord] {
	return func(yield func(*MessageRecord) bool) {
		all := log.all()
		for i := range all {
			if scope != Overall && all[i].Sender != scope {
				continue
			}
			if !yield(&all[i]) {
				return
			}
		}
	}
}
