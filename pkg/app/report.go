package app

import (
	"context"
	"time"

	"tableflip.dev/tabby/pkg/entry"
)

// ReportResult summarises the entries between two days.
type ReportResult struct {
	Since   time.Time
	Until   time.Time
	Entries []*entry.Entry

	Intentions  int
	Goals       int
	Reflections int
	// Written counts entries with any visible text.
	Written int
	// LongestStreak is the longest run of consecutive written days.
	LongestStreak int
	// CurrentStreak is the run of written days ending at Until.
	CurrentStreak int
}

// Report summarises entries from since to until. Reversed bounds are swapped.
func (s *Service) Report(ctx context.Context, since, until time.Time) (ReportResult, error) {
	if since.After(until) {
		since, until = until, since
	}
	loc := s.loc()
	since, until = entry.Normalize(since, loc), entry.Normalize(until, loc)

	all, err := s.Range(ctx, since, until)
	if err != nil {
		return ReportResult{}, err
	}

	res := ReportResult{Since: since, Until: until, Entries: all}
	written := make(map[string]bool, len(all))
	for _, e := range all {
		if entry.Text(e.Intention) != "" {
			res.Intentions++
		}
		if entry.Text(e.Goal) != "" {
			res.Goals++
		}
		if entry.Text(e.Reflection) != "" {
			res.Reflections++
		}
		if e.HasContent() {
			res.Written++
			written[entry.DayKey(e.Day, loc)] = true
		}
	}

	run := 0
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		if written[entry.DayKey(d, loc)] {
			run++
			if run > res.LongestStreak {
				res.LongestStreak = run
			}
			continue
		}
		run = 0
	}
	res.CurrentStreak = run
	return res, nil
}
