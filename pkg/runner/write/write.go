// Package write is the terminal editor for today's entry. Every edit goes
// through an autosave coordinator.
package write

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/tabby/pkg/autosave"
	"tableflip.dev/tabby/pkg/entry"
)

// Saver is the part of autosave.Coordinator the editor drives.
type Saver interface {
	Set(f autosave.Field, v string)
	Pending() []autosave.Field
	Close(ctx context.Context) error
}

var _ Saver = (*autosave.Coordinator)(nil)

var (
	labels       = [...]string{entry.LabelIntention, entry.LabelGoal, entry.LabelReflection}
	placeholders = [...]string{"What do you intend today?", "What is today's goal?", "How did today go?"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("218"))
	blurStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

type closedMsg struct{ err error }

// Model holds the editor state.
type Model struct {
	ctx    context.Context
	saver  Saver
	day    time.Time
	inputs [3]textinput.Model
	focus  int
	status string
	err    error
	done   bool
}

// New builds an editor for day seeded from e, which may be nil.
func New(ctx context.Context, saver Saver, day time.Time, e *entry.Entry) Model {
	var seed [3]*string
	if e != nil {
		seed = [3]*string{e.Intention, e.Goal, e.Reflection}
	}
	m := Model{ctx: ctx, saver: saver, day: day, status: "tab: next field, esc: save and quit"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 512
		ti.Prompt = ""
		ti.Styles.Cursor.Color = lipgloss.Color("218")
		ti.Styles.Cursor.Shape = tea.CursorUnderline
		if seed[i] != nil {
			ti.SetValue(*seed[i])
		}
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Err is the error from the final flush, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tick()
	case closedMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyPressMsg:
		if m.done {
			return m, nil
		}
		switch msg.String() {
		case "esc", "ctrl+c":
			m.done = true
			m.status = "saving…"
			saver, ctx := m.saver, m.ctx
			return m, func() tea.Msg { return closedMsg{err: saver.Close(ctx)} }
		case "tab", "down", "enter":
			return m, m.move(1)
		case "shift+tab", "up":
			return m, m.move(-1)
		}
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.saver.Set(autosave.Field(m.focus), after)
	}
	return m, cmd
}

func (m *Model) move(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.day.Format("Monday, January 2, 2006")))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		label := blurStyle.Render(labels[i])
		if i == m.focus {
			label = labelStyle.Render(labels[i])
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", label, in.View())
	}

	status := m.status
	if pending := m.saver.Pending(); len(pending) > 0 && !m.done {
		names := make([]string, 0, len(pending))
		for _, f := range pending {
			names = append(names, f.String())
		}
		status = "unsaved: " + strings.Join(names, ", ")
	}
	if m.err != nil {
		status = "ERR: " + m.err.Error()
	}
	b.WriteString(statusStyle.Render(status))
	return b.String()
}

// Run opens the editor and blocks until it is closed. Pending edits are
// flushed before Run returns.
func Run(ctx context.Context, saver Saver, day time.Time, e *entry.Entry) error {
	return run(ctx, saver, New(ctx, saver, day, e), tea.WithAltScreen())
}

func run(ctx context.Context, saver Saver, m Model, opts ...tea.ProgramOption) error {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return errors.Join(err, saver.Close(ctx))
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
