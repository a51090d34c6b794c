package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
)

const weekHeader = "Su Mo Tu We Th Fr Sa"

var gridWidth = len(weekHeader)

// GridOptions styles the month grid.
type GridOptions struct {
	HeaderStyle   lipgloss.Style
	EmptyStyle    lipgloss.Style
	EntryStyle    lipgloss.Style
	TodayStyle    lipgloss.Style
	SelectedStyle lipgloss.Style
}

// DefaultGridOptions: written days bright, today underlined, selection
// highlighted.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		HeaderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
		EmptyStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		EntryStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		TodayStyle:    lipgloss.NewStyle().Underline(true),
		SelectedStyle: lipgloss.NewStyle().Background(lipgloss.Color("218")).Foreground(lipgloss.Color("0")),
	}
}

// RenderMonth draws the month containing month as week rows under a weekday
// header. written holds the days of month that have an entry; selected is a
// day of month or 0.
func RenderMonth(month time.Time, written map[int]bool, selected int, today time.Time, opts GridOptions) string {
	if month.IsZero() {
		return ""
	}
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	daysInMonth := DaysIn(month)

	todayDay := 0
	if today.Year() == first.Year() && today.Month() == first.Month() {
		todayDay = today.Day()
	}

	lines := []string{opts.HeaderStyle.Render(weekHeader)}
	offset := int(first.Weekday())
	rows := (offset + daysInMonth + 6) / 7
	for row := 0; row < rows; row++ {
		cells := make([]string, 0, 7)
		for col := 0; col < 7; col++ {
			day := row*7 + col - offset + 1
			if day < 1 || day > daysInMonth {
				cells = append(cells, opts.EmptyStyle.Render("  "))
				continue
			}
			cells = append(cells, renderDay(day, written[day], day == todayDay, day == selected, opts))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func renderDay(day int, written, today, selected bool, opts GridOptions) string {
	style := opts.EmptyStyle
	if written {
		style = opts.EntryStyle
	}
	if today {
		style = style.Inherit(opts.TodayStyle)
	}
	if selected {
		style = style.Inherit(opts.SelectedStyle)
	}
	return style.Render(fmt.Sprintf("%2d", day))
}

// DaysIn returns the number of days in month.
func DaysIn(month time.Time) int {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	return first.AddDate(0, 1, -1).Day()
}
