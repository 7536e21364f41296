package logic

import (
	"fmt"
	"time"
)

// dateLayouts are tried in order before falling back to RFC 3339.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses the date formats accepted in LC document fields. A
// trailing Z is treated as UTC via the RFC 3339 fallback.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}
