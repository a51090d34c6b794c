// Package timeutil parses the day and span arguments accepted on the command
// line.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultSpan is the report span used when none is provided.
const DefaultSpan = "1w"

var (
	spanPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitDays    = map[string]Span{
		"d":      {Days: 1},
		"day":    {Days: 1},
		"days":   {Days: 1},
		"w":      {Days: 7},
		"wk":     {Days: 7},
		"wks":    {Days: 7},
		"week":   {Days: 7},
		"weeks":  {Days: 7},
		"mo":     {Months: 1},
		"month":  {Months: 1},
		"months": {Months: 1},
		"y":      {Years: 1},
		"yr":     {Years: 1},
		"year":   {Years: 1},
		"years":  {Years: 1},
	}
)

// Span is a calendar length. Months and years follow the calendar, so a span
// of one month ending March 31 starts March 1.
type Span struct {
	Years  int
	Months int
	Days   int
}

// ParseSpan reads strings such as "1w", "10d" or "1y2mo". Empty input means
// DefaultSpan.
func ParseSpan(input string) (Span, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultSpan
	}

	var total Span
	for len(remaining) > 0 {
		matches := spanPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return Span{}, fmt.Errorf("invalid span segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.Atoi(matches[1])
		if err != nil {
			return Span{}, fmt.Errorf("invalid span value %q: %w", matches[1], err)
		}
		unit, ok := unitDays[matches[2]]
		if !ok {
			return Span{}, fmt.Errorf("unsupported span unit %q", matches[2])
		}
		total.Years += value * unit.Years
		total.Months += value * unit.Months
		total.Days += value * unit.Days
		remaining = remaining[len(matches[0]):]
	}

	if total == (Span{}) {
		return Span{}, fmt.Errorf("span must be greater than zero")
	}
	return total, nil
}

// Start is the first day of the span that ends on (and includes) end.
func (s Span) Start(end time.Time) time.Time {
	return end.AddDate(-s.Years, -s.Months, -s.Days).AddDate(0, 0, 1)
}

func (s Span) String() string {
	var b strings.Builder
	if s.Years > 0 {
		fmt.Fprintf(&b, "%dy", s.Years)
	}
	if s.Months > 0 {
		fmt.Fprintf(&b, "%dmo", s.Months)
	}
	weeks, days := s.Days/7, s.Days%7
	if weeks > 0 {
		fmt.Fprintf(&b, "%dw", weeks)
	}
	if days > 0 {
		fmt.Fprintf(&b, "%dd", days)
	}
	if b.Len() == 0 {
		return "0d"
	}
	return b.String()
}
