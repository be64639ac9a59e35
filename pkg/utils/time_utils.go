package utils

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func NowUnixSeconds() int64 { return time.Now().Unix() }

// Today is the current calendar date at UTC midnight.
func Today() time.Time {
	return TruncateDate(time.Now().UTC())
}

func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value. Blank input returns nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 02, 2006")
}

func FormatShortDate(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("Jan 02, 2006")
}
