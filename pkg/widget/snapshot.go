package widget

import (
	"context"
	"strings"
)

// Placeholders shown when a value is missing or blank.
const (
	PlaceholderIntention = "Set your intention"
	PlaceholderGoal      = "Set your goal"
)

// Snapshot is what a surface renders. It is never blank.
type Snapshot struct {
	Intention string
	Goal      string
	// Set reports whether the value came from the journal rather than a
	// placeholder.
	IntentionSet bool
	GoalSet      bool
}

// Resolve builds a Snapshot from raw shared values.
func Resolve(intention, goal *string) Snapshot {
	s := Snapshot{Intention: PlaceholderIntention, Goal: PlaceholderGoal}
	if v := text(intention); v != "" {
		s.Intention, s.IntentionSet = v, true
	}
	if v := text(goal); v != "" {
		s.Goal, s.GoalSet = v, true
	}
	return s
}

// Snapshot reads the shared space and resolves placeholders.
func (b *Bridge) Snapshot(ctx context.Context) (Snapshot, error) {
	intention, goal, err := b.ReadToday(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Resolve(intention, goal), nil
}

func text(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
