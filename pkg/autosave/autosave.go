// Package autosave debounces field edits from a live editor into store writes.
//
// Each field has its own quiet period: a save fires Delay after the last edit
// to that field, and an edit inside the window replaces the pending save.
// Saves run one at a time and a replaced save never fires.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/logging"
)

// DefaultDelay is the quiet period used when Options.Delay is zero.
const DefaultDelay = 500 * time.Millisecond

// Field names one debounced text field.
type Field int

const (
	Intention Field = iota
	Goal
	Reflection
)

var fieldNames = [...]string{"intention", "goal", "reflection"}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

func (f Field) fields(v string) entry.Fields {
	switch f {
	case Intention:
		return entry.Fields{Intention: entry.String(v)}
	case Goal:
		return entry.Fields{Goal: entry.String(v)}
	default:
		return entry.Fields{Reflection: entry.String(v)}
	}
}

// Rollover decides which day a save lands on when local midnight passes
// between an edit and its save.
type Rollover int

const (
	// SaveAtFire resolves "today" when the save runs.
	SaveAtFire Rollover = iota
	// SaveAtKeystroke keeps the day of the first edit in the pending burst.
	SaveAtKeystroke
)

func (r Rollover) String() string {
	if r == SaveAtKeystroke {
		return "keystroke"
	}
	return "fire"
}

// ParseRollover accepts "fire" and "keystroke". Empty means SaveAtFire.
func ParseRollover(s string) (Rollover, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fire":
		return SaveAtFire, nil
	case "keystroke":
		return SaveAtKeystroke, nil
	}
	return SaveAtFire, fmt.Errorf("autosave: unknown rollover policy %q", s)
}

// Writer persists a partial update for day. The journal service implements it.
type Writer interface {
	SaveFields(ctx context.Context, day time.Time, f entry.Fields) error
}

// Options tune a Coordinator. Zero values select defaults.
type Options struct {
	Delay    time.Duration
	Rollover Rollover
	Clock    func() time.Time
	Logger   logging.Logger
}

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("autosave: coordinator closed")

type fieldState struct {
	value string
	day   time.Time
	dirty bool
	gen   uint64
	timer *time.Timer
}

// Coordinator owns the pending saves of one editing session.
type Coordinator struct {
	ctx  context.Context
	w    Writer
	opts Options

	// save serializes every write issued by the coordinator.
	save sync.Mutex

	mu     sync.Mutex
	fields [3]fieldState
	closed bool
}

// New returns a Coordinator writing through w. Debounced saves run with ctx.
func New(ctx context.Context, w Writer, opts Options) *Coordinator {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Coordinator{ctx: ctx, w: w, opts: opts}
}

func (c *Coordinator) SetIntention(v string)  { c.Set(Intention, v) }
func (c *Coordinator) SetGoal(v string)       { c.Set(Goal, v) }
func (c *Coordinator) SetReflection(v string) { c.Set(Reflection, v) }

// Set records v as the latest value of f and (re)starts its quiet period.
func (c *Coordinator) Set(f Field, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.opts.Logger.Debug(c.ctx, "autosave: edit after close ignored", "field", f)
		return
	}
	st := &c.fields[f]
	if !st.dirty {
		st.day = c.opts.Clock()
	}
	st.value = v
	st.dirty = true
	st.gen++
	if st.timer != nil {
		st.timer.Stop()
	}
	gen := st.gen
	st.timer = time.AfterFunc(c.opts.Delay, func() { c.fire(f, gen) })
}

// Pending reports the fields holding an unsaved value.
func (c *Coordinator) Pending() []Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Field
	for i := range c.fields {
		if c.fields[i].dirty {
			out = append(out, Field(i))
		}
	}
	return out
}

func (c *Coordinator) fire(f Field, gen uint64) {
	c.save.Lock()
	defer c.save.Unlock()

	c.mu.Lock()
	st := &c.fields[f]
	if st.gen != gen || !st.dirty {
		c.mu.Unlock()
		return
	}
	st.timer = nil
	value, day := st.value, c.dayFor(st)
	c.mu.Unlock()

	err := c.w.SaveFields(c.ctx, day, f.fields(value))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.opts.Logger.Warn(c.ctx, "autosave: save failed, will retry", "field", f, "error", err)
		return
	}
	if st.gen == gen {
		st.dirty = false
	}
	c.opts.Logger.Debug(c.ctx, "autosave: saved", "field", f, "day", day.Format(entry.LayoutDay))
}

// dayFor must be called with c.mu held.
func (c *Coordinator) dayFor(st *fieldState) time.Time {
	if c.opts.Rollover == SaveAtKeystroke && !st.day.IsZero() {
		return st.day
	}
	return c.opts.Clock()
}

// Flush cancels every pending save and writes the unsaved values now, one
// write per target day. Fields that fail stay pending.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.save.Lock()
	defer c.save.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	batches, gens := c.collect()
	c.mu.Unlock()

	return c.write(ctx, batches, gens)
}

// Close flushes and stops accepting edits.
func (c *Coordinator) Close(ctx context.Context) error {
	c.save.Lock()
	defer c.save.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	batches, gens := c.collect()
	c.mu.Unlock()

	return c.write(ctx, batches, gens)
}

type batch struct {
	day    time.Time
	fields entry.Fields
	which  []Field
}

// collect stops timers and groups dirty fields by target day. c.mu is held.
func (c *Coordinator) collect() ([]*batch, [3]uint64) {
	var gens [3]uint64
	byDay := map[string]*batch{}
	var order []*batch
	for i := range c.fields {
		st := &c.fields[i]
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		st.gen++
		gens[i] = st.gen
		if !st.dirty {
			continue
		}
		day := c.dayFor(st)
		key := day.Format(entry.LayoutDay)
		b, ok := byDay[key]
		if !ok {
			b = &batch{day: day}
			byDay[key] = b
			order = append(order, b)
		}
		b.fields = b.fields.Merge(Field(i).fields(st.value))
		b.which = append(b.which, Field(i))
	}
	return order, gens
}

func (c *Coordinator) write(ctx context.Context, batches []*batch, gens [3]uint64) error {
	var errs []error
	for _, b := range batches {
		if err := c.w.SaveFields(ctx, b.day, b.fields); err != nil {
			errs = append(errs, fmt.Errorf("autosave: flush %s: %w", b.day.Format(entry.LayoutDay), err))
			continue
		}
		c.mu.Lock()
		for _, f := range b.which {
			if c.fields[f].gen == gens[f] {
				c.fields[f].dirty = false
			}
		}
		c.mu.Unlock()
	}
	return errors.Join(errs...)
}
