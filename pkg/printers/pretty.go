package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/reminder"
	"tableflip.dev/tabby/pkg/widget"
)

const layoutLong = "Monday, January 2, 2006"

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

// Writer is where the printer writes.
func (pp *PrettyPrint) Writer() io.Writer { return pp.out() }

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " entry")
	default:
		_, _ = c.Fprintln(pp.out(), " entries")
	}
}

// Entry prints one day's entry as a label/value table.
func (pp *PrettyPrint) Entry(e *entry.Entry) {
	pp.Title(e.Day.Format(layoutLong))
	if pp.ShowID {
		y := color.New(color.FgHiYellow, color.Italic, color.Faint)
		_, _ = y.Fprintln(pp.out(), e.ID)
	}

	tbl := uitable.New()
	tbl.Wrap = true
	tbl.MaxColWidth = 72
	b := color.New(color.Bold).SprintFunc()
	for _, row := range e.Rows() {
		tbl.AddRow(b(row[0]), row[1])
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Missing prints the notice for a day with no entry.
func (pp *PrettyPrint) Missing(title string) {
	pp.Title(title)
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Entries prints a compact one-line-per-day list.
func (pp *PrettyPrint) Entries(title string, entries ...*entry.Entry) {
	pp.TitleWithCount(title, len(entries))
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 40
	d := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	for _, e := range entries {
		row := []interface{}{d(e.Day.Format(entry.LayoutDay))}
		if pp.ShowID {
			row = append(row, faint(e.ID))
		}
		row = append(row, summary(e.Intention), summary(e.Goal), summary(e.Reflection))
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func summary(v *string) string {
	if t := entry.Text(v); t != "" {
		return strings.ReplaceAll(t, "\n", " ")
	}
	return "-"
}

// Widget prints what the shared surface shows.
func (pp *PrettyPrint) Widget(s widget.Snapshot) {
	pp.Title("Today")
	tbl := uitable.New()
	b := color.New(color.Bold).SprintFunc()
	f := color.New(color.Faint, color.Italic).SprintFunc()
	show := func(v string, set bool) string {
		if set {
			return v
		}
		return f(v)
	}
	tbl.AddRow(b(entry.LabelIntention), show(s.Intention, s.IntentionSet))
	tbl.AddRow(b(entry.LabelGoal), show(s.Goal, s.GoalSet))
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Reminders prints the reminder settings and what is pending.
func (pp *PrettyPrint) Reminders(prefs reminder.Settings, pending []reminder.Upcoming) {
	pp.Title("Reminders")
	onOff := func(on bool) string {
		if on {
			return color.GreenString("on")
		}
		return color.New(color.Faint).Sprint("off")
	}
	tbl := uitable.New()
	tbl.AddRow(entry.LabelIntention, prefs.IntentionAt.String(), onOff(prefs.IntentionOn))
	tbl.AddRow(entry.LabelReflection, prefs.ReflectionAt.String(), onOff(prefs.ReflectionOn))
	_, _ = fmt.Fprintln(pp.out(), tbl)

	if len(pending) > 0 {
		pp.NewLine()
		i := color.New(color.Italic)
		_, _ = i.Fprintln(pp.out(), "Next")
		for _, u := range pending {
			_, _ = fmt.Fprintf(pp.out(), "  %s  %s\n", u.Next.Format("Mon Jan 2 15:04"), u.Title)
		}
	}
	pp.NewLine()
}

// Report prints a range summary.
func (pp *PrettyPrint) Report(r app.ReportResult) {
	pp.Title(fmt.Sprintf("%s to %s", r.Since.Format(entry.LayoutDay), r.Until.Format(entry.LayoutDay)))
	tbl := uitable.New()
	b := color.New(color.Bold).SprintFunc()
	tbl.AddRow(b("Days written"), r.Written)
	tbl.AddRow(b("Intentions"), r.Intentions)
	tbl.AddRow(b("Goals"), r.Goals)
	tbl.AddRow(b("Reflections"), r.Reflections)
	tbl.AddRow(b("Longest streak"), r.LongestStreak)
	tbl.AddRow(b("Current streak"), r.CurrentStreak)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}
