package models

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("must be a date (YYYY-MM-DD) or an RFC 3339 datetime")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate accepts a date-only value, a datetime without zone (read as UTC)
// or RFC 3339. Date-only values become midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
