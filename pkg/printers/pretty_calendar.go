package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/tabby/pkg/calendar"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Month prints the month containing focus as a week grid. Days with an entry
// are bold, today is underlined and the focus day is highlighted. Days outside
// the index window are drawn faint.
func (pp *PrettyPrint) Month(focus, today time.Time, days []calendar.Day) {
	has := make(map[string]bool, len(days))
	for _, d := range days {
		if d.HasEntry {
			has[d.Date.Format("2006-01-02")] = true
		}
	}
	first := time.Date(focus.Year(), focus.Month(), 1, 0, 0, 0, 0, focus.Location())

	tf := color.New(color.FgWhite, color.Italic)
	m := fmt.Sprintf("%s %d", first.Month(), first.Year())
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(pp.out(), "%s%s\n", strings.Repeat(" ", mid), m)
	_, _ = color.New(color.Faint).Fprintln(pp.out(), "Su Mo Tu We Th Fr Sa")

	// Pad out the start of the month.
	for i := time.Sunday; i < first.Weekday(); i++ {
		_, _ = fmt.Fprint(pp.out(), "   ")
	}

	plain := color.New(color.Faint, color.FgWhite)
	written := color.New(color.Bold, color.FgHiWhite)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		printer := plain
		if has[d.Format("2006-01-02")] {
			printer = written
		}
		attrs := []color.Attribute{}
		if sameDay(d, today) {
			attrs = append(attrs, color.Underline)
		}
		if sameDay(d, focus) {
			attrs = append(attrs, color.ReverseVideo)
		}
		if len(attrs) > 0 {
			printer = color.New(append(attrs, color.Bold)...)
		}
		_, _ = printer.Fprintf(pp.out(), "%2d", d.Day())
		_, _ = fmt.Fprint(pp.out(), " ")

		if d.Weekday() == time.Saturday {
			_, _ = fmt.Fprint(pp.out(), "\n")
		}
	}
	_, _ = fmt.Fprint(pp.out(), "\n\n")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
