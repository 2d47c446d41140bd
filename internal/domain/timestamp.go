package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the wire and file format of trip times: local wall clock,
// second precision, no zone offset.
const TimestampLayout = "2006-01-02 15:04:05"

// isoLayout is accepted on decode for files that used a "T" separator.
const isoLayout = "2006-01-02T15:04:05"

// Timestamp is a local wall-clock time truncated to whole seconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp converts t to local time and drops sub-second precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second).In(time.Local)}
}

// ParseTimestamp parses s in TimestampLayout (or the ISO "T" variant) as a
// local time.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range []string{TimestampLayout, isoLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: malformed timestamp %q", ErrInvalidInput, s)
}

// String renders the timestamp in TimestampLayout.
func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

// MarshalJSON encodes the timestamp as a TimestampLayout string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a TimestampLayout string.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// FormatOptional returns the TimestampLayout form of t, or "" if t is nil.
func FormatOptional(t *Timestamp) string {
	if t == nil {
		return ""
	}
	return t.String()
}
