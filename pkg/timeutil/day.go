package timeutil

import (
	"fmt"
	"strings"
	"time"

	"tableflip.dev/tabby/pkg/entry"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// ParseDay resolves a day argument relative to now: "today", "yesterday",
// "tomorrow", "2024-3-1" or "3/1". A month/day without a year is the most
// recent such day not after today. The result is midnight in loc.
func ParseDay(input string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	today := entry.Normalize(now, loc)

	switch s := strings.ToLower(strings.TrimSpace(input)); s {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	s := strings.TrimSpace(input)
	if t, err := time.ParseInLocation(layoutISO, s, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(layoutISOShort, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized day %q, try 2024-3-1, 3/1 or yesterday", input)
	}
	// A journal looks back: 12/30 typed on 1/2 means last year.
	t = time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	if t.After(today) {
		t = t.AddDate(-1, 0, 0)
	}
	return t, nil
}
