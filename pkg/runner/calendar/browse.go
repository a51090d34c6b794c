package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/tabby/pkg/calendar"
	"tableflip.dev/tabby/pkg/changes"
	"tableflip.dev/tabby/pkg/entry"
)

var (
	monthStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const browseHelp = "arrows: move  [ ]: month  t: today  enter: write  q: quit"

type tickMsg time.Time

// Browser is a month view that scrolls through the index. Every move goes
// through Index.Focus, which recentres the window near its edges.
type Browser struct {
	ctx      context.Context
	index    *calendar.Index
	today    time.Time
	selected time.Time
	chosen   time.Time
	opts     GridOptions
	err      error
	done     bool
}

// NewBrowser focuses index on focus and returns the model.
func NewBrowser(ctx context.Context, index *calendar.Index, focus, today time.Time) (Browser, error) {
	b := Browser{ctx: ctx, index: index, today: today, opts: DefaultGridOptions()}
	b.focus(focus)
	return b, b.err
}

// Selected is the highlighted day.
func (b Browser) Selected() time.Time { return b.selected }

// Chosen is the day picked with enter; zero when the browser was quit.
func (b Browser) Chosen() time.Time { return b.chosen }

// Err is the last load error, if any.
func (b Browser) Err() error { return b.err }

func (b *Browser) focus(day time.Time) {
	day = b.index.Clamp(day)
	if _, err := b.index.Focus(b.ctx, day); err != nil {
		b.err = err
		return
	}
	b.err = nil
	b.selected = day
}

// shiftMonth keeps the day of month where the target month allows it.
func (b *Browser) shiftMonth(first time.Time) {
	d := b.selected.Day()
	if n := DaysIn(first); d > n {
		d = n
	}
	b.focus(first.AddDate(0, 0, d-1))
}

func (b Browser) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if b.done {
			return b, nil
		}
		// Redraw picks up refreshes made by Index.Follow.
		return b, tick()
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			b.done = true
			return b, tea.Quit
		case "enter":
			b.chosen = b.selected
			b.done = true
			return b, tea.Quit
		case "left", "h":
			b.focus(b.selected.AddDate(0, 0, -1))
		case "right", "l":
			b.focus(b.selected.AddDate(0, 0, 1))
		case "up", "k":
			b.focus(b.selected.AddDate(0, 0, -7))
		case "down", "j":
			b.focus(b.selected.AddDate(0, 0, 7))
		case "[", "pgup":
			b.shiftMonth(b.index.PrevMonth(b.selected))
		case "]", "pgdown":
			b.shiftMonth(b.index.NextMonth(b.selected))
		case "t":
			b.focus(b.today)
		}
	}
	return b, nil
}

func (b Browser) View() string {
	has := make(map[int]bool)
	for _, d := range b.index.Days() {
		if d.HasEntry && d.Date.Year() == b.selected.Year() && d.Date.Month() == b.selected.Month() {
			has[d.Date.Day()] = true
		}
	}

	var s strings.Builder
	title := b.selected.Format("January 2006")
	s.WriteString(strings.Repeat(" ", max(0, (gridWidth-len(title))/2)))
	s.WriteString(monthStyle.Render(title))
	s.WriteString("\n")
	s.WriteString(RenderMonth(b.selected, has, b.selected.Day(), b.today, b.opts))
	s.WriteString("\n\n")
	s.WriteString(b.selected.Format("Monday, January 2, 2006"))
	if has[b.selected.Day()] {
		s.WriteString(" ✎")
	}
	s.WriteString("\n")
	if b.err != nil {
		s.WriteString(errStyle.Render("ERR: " + b.err.Error()))
	} else {
		s.WriteString(statusStyle.Render(browseHelp))
	}
	return s.String()
}

// Browse runs the interactive calendar until the user quits or picks a day,
// which is returned. The index follows sig, so writes announced on it,
// including those seen by a store watch, redraw the month.
func Browse(ctx context.Context, index *calendar.Index, sig *changes.Signal, focus, today time.Time) (time.Time, error) {
	if index == nil {
		return time.Time{}, errors.New("can not browse calendar, no index")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if sig != nil {
		go index.Follow(ctx, sig.Subscribe(ctx))
	}

	m, err := NewBrowser(ctx, index, focus, entry.Normalize(today, today.Location()))
	if err != nil {
		return time.Time{}, err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: %w", err)
	}
	if b, ok := final.(Browser); ok {
		return b.Chosen(), b.Err()
	}
	return time.Time{}, nil
}
