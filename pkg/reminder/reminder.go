// Package reminder turns the reminder settings into daily, repeating
// notification requests and hands them to a Scheduler.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reminder identifiers.
const (
	IntentionID  = "intention_reminder"
	ReflectionID = "reflection_reminder"
)

// TimeOfDay is a wall clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseClock reads "HH:MM" in 24 hour time.
func ParseClock(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("reminder: %q is not HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("reminder: bad hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("reminder: bad minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Next is the first occurrence of t strictly after now, in now's location.
func (t TimeOfDay) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Settings are the user's reminder choices.
type Settings struct {
	IntentionOn  bool
	IntentionAt  TimeOfDay
	ReflectionOn bool
	ReflectionAt TimeOfDay
}

// DefaultSettings has both reminders off, at 09:00 and 21:00.
func DefaultSettings() Settings {
	return Settings{
		IntentionAt:  TimeOfDay{Hour: 9},
		ReflectionAt: TimeOfDay{Hour: 21},
	}
}

// Reminder is one repeating daily notification request.
type Reminder struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Repeats bool   `json:"repeats"`
}

// At is the reminder's time of day.
func (r Reminder) At() TimeOfDay { return TimeOfDay{Hour: r.Hour, Minute: r.Minute} }

func Intention(at TimeOfDay) Reminder {
	return Reminder{
		ID:      IntentionID,
		Title:   "Set your intention",
		Body:    "Take a moment to set your intention for the day.",
		Hour:    at.Hour,
		Minute:  at.Minute,
		Repeats: true,
	}
}

func Reflection(at TimeOfDay) Reminder {
	return Reminder{
		ID:      ReflectionID,
		Title:   "Reflect on your day",
		Body:    "Take a moment to reflect on your day.",
		Hour:    at.Hour,
		Minute:  at.Minute,
		Repeats: true,
	}
}

// Scheduler delivers reminders. OS level delivery lives behind it.
type Scheduler interface {
	Schedule(ctx context.Context, r Reminder) error
	Cancel(ctx context.Context, id string) error
}

// Apply schedules the enabled reminders and cancels the disabled ones.
func Apply(ctx context.Context, s Scheduler, settings Settings) error {
	var errs []error
	apply := func(on bool, r Reminder) {
		var err error
		if on {
			err = s.Schedule(ctx, r)
		} else {
			err = s.Cancel(ctx, r.ID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("reminder: %s: %w", r.ID, err))
		}
	}
	apply(settings.IntentionOn, Intention(settings.IntentionAt))
	apply(settings.ReflectionOn, Reflection(settings.ReflectionAt))
	return errors.Join(errs...)
}
