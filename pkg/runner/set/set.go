package set

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/entry"
)

// Fields accepted by Set.
var Fields = []string{"intention", "goal", "reflection", "mood"}

// Set writes one field of one day.
type Set struct {
	Service *app.Service
	Day     time.Time
	Field   string
	Value   string
}

// FieldsFor maps a field name to a partial update.
func FieldsFor(name, value string) (entry.Fields, error) {
	v := entry.String(value)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "intention":
		return entry.Fields{Intention: v}, nil
	case "goal":
		return entry.Fields{Goal: v}, nil
	case "reflection":
		return entry.Fields{Reflection: v}, nil
	case "mood":
		return entry.Fields{Mood: v}, nil
	}
	return entry.Fields{}, fmt.Errorf("unknown field %q, expected one of %s", name, strings.Join(Fields, ", "))
}

func (n *Set) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not set, no service")
	}
	f, err := FieldsFor(n.Field, n.Value)
	if err != nil {
		return err
	}
	return n.Service.SaveFields(ctx, n.Day, f)
}
