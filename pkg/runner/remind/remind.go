package remind

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/tabby/pkg/printers"
	"tableflip.dev/tabby/pkg/reminder"
)

// Store persists reminder preferences.
type Store interface {
	SaveReminders(prefs reminder.Settings) error
}

// Remind applies reminder settings to the registry and lists what is pending.
type Remind struct {
	Registry *reminder.Registry
	Settings reminder.Settings
	// Prefs is written when Save is set.
	Prefs   Store
	Save    bool
	Now     time.Time
	JSON    bool
	Printer *printers.PrettyPrint
}

type listing struct {
	Settings reminder.Settings   `json:"settings"`
	Pending  []reminder.Upcoming `json:"pending"`
}

func (n *Remind) Do(ctx context.Context) error {
	if n.Registry == nil {
		return errors.New("can not remind, no registry")
	}
	if n.Save {
		if n.Prefs != nil {
			if err := n.Prefs.SaveReminders(n.Settings); err != nil {
				return err
			}
		}
		if err := reminder.Apply(ctx, n.Registry, n.Settings); err != nil {
			return err
		}
	}
	now := n.Now
	if now.IsZero() {
		now = time.Now()
	}
	pending, err := n.Registry.Upcoming(ctx, now)
	if err != nil {
		return err
	}

	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if n.JSON {
		return pp.JSON(listing{Settings: n.Settings, Pending: pending})
	}
	pp.Reminders(n.Settings, pending)
	return nil
}
