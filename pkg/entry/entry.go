package entry

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one day's journal record. Day is the natural key: a store holds at
// most one Entry per normalized day.
type Entry struct {
	ID         string    `json:"id"`
	Day        time.Time `json:"day"`
	Intention  *string   `json:"intention"`
	Goal       *string   `json:"goal"`
	Reflection *string   `json:"reflection"`
	Mood       *string   `json:"mood,omitempty"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
}

// New returns an empty entry for day with a fresh id and both timestamps set
// to now.
func New(day time.Time, now time.Time) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		Day:       day,
		CreatedAt: Timestamp{Time: now},
		UpdatedAt: Timestamp{Time: now},
	}
}

// Fields carries a partial update. A nil field is left unchanged.
type Fields struct {
	Intention  *string
	Goal       *string
	Reflection *string
	Mood       *string
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Intention == nil && f.Goal == nil && f.Reflection == nil && f.Mood == nil
}

// Merge returns f with every non-nil field of other laid on top.
func (f Fields) Merge(other Fields) Fields {
	if other.Intention != nil {
		f.Intention = other.Intention
	}
	if other.Goal != nil {
		f.Goal = other.Goal
	}
	if other.Reflection != nil {
		f.Reflection = other.Reflection
	}
	if other.Mood != nil {
		f.Mood = other.Mood
	}
	return f
}

// Apply writes the non-nil fields of f into e and reports whether anything
// changed. UpdatedAt is bumped to now only when a value changed.
func (e *Entry) Apply(f Fields, now time.Time) bool {
	changed := false
	set := func(dst **string, v *string) {
		if v == nil {
			return
		}
		if *dst != nil && **dst == *v {
			return
		}
		*dst = String(*v)
		changed = true
	}
	set(&e.Intention, f.Intention)
	set(&e.Goal, f.Goal)
	set(&e.Reflection, f.Reflection)
	set(&e.Mood, f.Mood)
	if changed {
		e.UpdatedAt = Timestamp{Time: now}
	}
	return changed
}

// Clone returns a deep copy so callers never share pointers with a store.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Intention = clonePtr(e.Intention)
	cp.Goal = clonePtr(e.Goal)
	cp.Reflection = clonePtr(e.Reflection)
	cp.Mood = clonePtr(e.Mood)
	return &cp
}

// HasContent reports whether any of the three text fields has visible text.
// A nil field and an empty string both count as no content.
func (e *Entry) HasContent() bool {
	if e == nil {
		return false
	}
	return Text(e.Intention) != "" || Text(e.Goal) != "" || Text(e.Reflection) != ""
}

// String pointer helper.
func String(v string) *string {
	return &v
}

// Text renders an optional field, treating nil and "" alike.
func Text(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// Equal compares two optional fields by value.
func Equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clonePtr(v *string) *string {
	if v == nil {
		return nil
	}
	return String(*v)
}
