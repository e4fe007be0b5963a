package chargebee

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Timestamp is a point in time as Chargebee transmits it. API responses use
// Unix epoch seconds, but webhook payloads produced by some site
// configurations carry pre-formatted date strings instead, so decoding
// accepts both and normalizes to UTC.
type Timestamp struct {
	time.Time
}

// Date-string layouts observed in webhook payloads, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewTimestamp wraps t, normalized to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		s := string(data[1 : len(data)-1])
		if s == "" {
			ts.Time = time.Time{}
			return nil
		}
		// Quoted epoch values show up alongside date strings.
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			ts.Time = time.Unix(epoch, 0).UTC()
			return nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				ts.Time = t.UTC()
				return nil
			}
		}
		return fmt.Errorf("chargebee: unrecognized timestamp format %q", s)
	}

	epoch, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("chargebee: invalid epoch timestamp %q: %w", data, err)
	}
	ts.Time = time.Unix(epoch, 0).UTC()
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(ts.Unix(), 10)), nil
}

// TimePtr returns the timestamp as a *time.Time, nil when unset. Local
// subscription rows store optional timestamps as pointers.
func (ts Timestamp) TimePtr() *time.Time {
	if ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
