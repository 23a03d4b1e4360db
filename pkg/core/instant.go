package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Instant is an absolute point in time with millisecond precision, as stored
// on disk (milliseconds since the Unix epoch).
//
// Values that cannot be interpreted as a time decode into an invalid Instant.
// The raw value is kept so that re-saving a document does not destroy it.
type Instant struct {
	ms    int64
	valid bool
	raw   json.RawMessage
}

// At converts t into an Instant.
func At(t time.Time) Instant {
	return Instant{ms: t.UnixMilli(), valid: true}
}

// Millis builds an Instant from milliseconds since the Unix epoch.
func Millis(ms int64) Instant {
	return Instant{ms: ms, valid: true}
}

// Valid reports whether the instant holds a usable time.
func (i Instant) Valid() bool { return i.valid }

// IsZero reports whether the instant carries no value at all.
func (i Instant) IsZero() bool { return !i.valid && len(i.raw) == 0 }

// UnixMilli returns the instant in milliseconds. Zero when invalid.
func (i Instant) UnixMilli() int64 { return i.ms }

// Time returns the instant as a time.Time. The zero time when invalid.
func (i Instant) Time() time.Time {
	if !i.valid {
		return time.Time{}
	}
	return time.UnixMilli(i.ms)
}

// Raw returns the undecodable source value of an invalid instant.
func (i Instant) Raw() string { return string(i.raw) }

// Equal reports whether two instants denote the same moment. Invalid
// instants are equal only when their raw source values match.
func (i Instant) Equal(o Instant) bool {
	if i.valid != o.valid {
		return false
	}
	if !i.valid {
		return string(i.raw) == string(o.raw)
	}
	return i.UnixMilli() == o.UnixMilli()
}

func (i Instant) String() string {
	if !i.valid {
		if len(i.raw) > 0 {
			return "invalid(" + string(i.raw) + ")"
		}
		return "unset"
	}
	return i.Time().Format(time.RFC3339)
}

// MarshalJSON writes valid instants as epoch milliseconds.
func (i Instant) MarshalJSON() ([]byte, error) {
	if i.valid {
		return strconv.AppendInt(nil, i.ms, 10), nil
	}
	if len(i.raw) > 0 {
		return i.raw, nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a number, a numeric string or an RFC 3339 string.
func (i *Instant) UnmarshalJSON(data []byte) error {
	*i = Instant{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			i.raw = bytes.Clone(data)
			return nil
		}
		if ms, ok := parseInstantString(s); ok {
			*i = Millis(ms)
			return nil
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			if ms, ok := parseNumber(string(n)); ok {
				*i = Millis(ms)
				return nil
			}
		}
	}

	i.raw = bytes.Clone(data)
	return nil
}

// ParseInstant accepts the same textual forms as the stored document:
// epoch milliseconds, RFC 3339, "2006-01-02T15:04" and "2006-01-02"
// (the last two in local time).
func ParseInstant(s string) (time.Time, error) {
	ms, ok := parseInstantString(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid instant %q", s)
	}
	return time.UnixMilli(ms), nil
}

func parseInstantString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if ms, ok := parseNumber(s); ok {
		return ms, true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func parseNumber(s string) (int64, bool) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int64(f), true
}
