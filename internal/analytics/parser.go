package analytics

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// recordLine is the JSONL wire form of a MessageRecord. Derived calendar
// fields are optional as a group: when all of them are absent they are
// computed from the timestamp.
type recordLine struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	Year    *int   `json:"year,omitempty"`
	Month   string `json:"month,omitempty"`
	DayName string `json:"day_name,omitempty"`
	Date    *Date  `json:"date,omitempty"`
	Hour    *int   `json:"hour,omitempty"`
}

func (l *recordLine) hasDerived() bool {
	return l.Year != nil || l.Month != "" || l.DayName != "" || l.Date != nil || l.Hour != nil
}

func (l *recordLine) complete() bool {
	return l.Year != nil && l.Month != "" && l.DayName != "" && l.Date != nil && l.Hour != nil
}

// ParseLine parses a single JSONL line into a validated MessageRecord.
func ParseLine(data []byte) (*MessageRecord, error) {
	var line recordLine
	if err := json.Unmarshal(data, &line); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}

	var rec MessageRecord
	switch {
	case !line.hasDerived():
		rec = NewRecord(line.Sender, line.Text, line.Timestamp)
	case line.complete():
		rec = MessageRecord{
			Sender:    line.Sender,
			Text:      line.Text,
			Timestamp: line.Timestamp,
			Year:      *line.Year,
			Month:     line.Month,
			DayName:   line.DayName,
			Date:      *line.Date,
			Hour:      *line.Hour,
		}
	default:
		return nil, fmt.Errorf("%w: incomplete derived fields", ErrMalformedRecord)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ParseJSONL decodes JSONL content into a MessageLog.
func ParseJSONL(content []byte) (*MessageLog, error) {
	return ReadJSONL(bytes.NewReader(content))
}

// ReadJSONL decodes a JSONL stream into a MessageLog.
// Blank lines are skipped; the first malformed line aborts with its 1-indexed
// line number. Errors from r itself are returned wrapped but are not input
// errors (see IsInputError).
func ReadJSONL(r io.Reader) (*MessageLog, error) {
	var records []MessageRecord
	lineNumber := 0

	scanner := bufio.NewScanner(r)
	// Pasted media captions and long messages can exceed the default token size
	const maxLineSize = 10 * 1024 * 1024 // 10MB
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	for scanner.Scan() {
		lineNumber++
		lineData := scanner.Bytes()
		if len(bytes.TrimSpace(lineData)) == 0 {
			continue
		}

		rec, err := ParseLine(lineData)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		records = append(records, *rec)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("line %d: %w: %v", lineNumber+1, ErrMalformedLine, err)
		}
		return nil, fmt.Errorf("read message log: %w", err)
	}

	return newMessageLogNoCopy(records), nil
}

// MarshalJSONL encodes records as JSONL, one object per line.
func MarshalJSONL(records []MessageRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
