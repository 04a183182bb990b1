package analytics

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Sentinel errors returned by the analytics package.
var (
	// ErrNoData is returned when an aggregate is undefined for an empty log.
	ErrNoData = errors.New("no messages to analyze")

	// ErrMalformedRecord is returned when a record is missing a required field
	// or carries an out-of-range derived value.
	ErrMalformedRecord = errors.New("malformed message record")

	// ErrMalformedLine is returned when a JSONL line cannot be decoded.
	ErrMalformedLine = errors.New("malformed JSONL line")
)

// weekdayOrder is the display order for weekday rows (Monday first).
var weekdayOrder = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// monthOrder is the calendar order of English month names.
var monthOrder = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var (
	weekdayIndex = indexOf(weekdayOrder[:])
	monthIndex   = indexOf(monthOrder[:])
)

func indexOf(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, name := range names {
		m[name] = i
	}
	return m
}

// Date is a calendar day without a time component. It is comparable, usable
// as a map key and encodes as "YYYY-MM-DD".
type Date = civil.Date

// MessageRecord is one parsed chat message. The calendar fields are derived
// from Timestamp by the parser and cached on the record.
type MessageRecord struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	Year    int    `json:"year"`
	Month   string `json:"month"`    // English month name, e.g. "January"
	DayName string `json:"day_name"` // English weekday name, e.g. "Monday"
	Date    Date   `json:"date"`
	Hour    int    `json:"hour"` // 0-23
}

// NewRecord builds a record with every derived field filled from ts.
func NewRecord(sender, text string, ts time.Time) MessageRecord {
	return MessageRecord{
		Sender:    sender,
		Text:      text,
		Timestamp: ts,
		Year:      ts.Year(),
		Month:     ts.Month().String(),
		DayName:   ts.Weekday().String(),
		Date:      civil.DateOf(ts),
		Hour:      ts.Hour(),
	}
}

// Validate checks that the record carries everything the analyzers rely on.
// Missing or out-of-range fields are never defaulted.
func (r *MessageRecord) Validate() error {
	switch {
	case r.Sender == "":
		return fmt.Errorf("%w: empty sender", ErrMalformedRecord)
	case r.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrMalformedRecord)
	case r.Year <= 0:
		return fmt.Errorf("%w: invalid year %d", ErrMalformedRecord, r.Year)
	case r.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrMalformedRecord)
	case r.Hour < 0 || r.Hour > 23:
		return fmt.Errorf("%w: hour %d out of range", ErrMalformedRecord, r.Hour)
	}
	if _, ok := monthIndex[r.Month]; !ok {
		return fmt.Errorf("%w: unknown month %q", ErrMalformedRecord, r.Month)
	}
	if _, ok := weekdayIndex[r.DayName]; !ok {
		return fmt.Errorf("%w: unknown day name %q", ErrMalformedRecord, r.DayName)
	}
	return nil
}
