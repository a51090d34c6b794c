package printers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/tabby/pkg/entry"
)

// DefaultWidth is the wrap width for markdown output.
const DefaultWidth = 80

// Markdown renders e as a markdown document wrapped at width. Empty fields
// are left out.
func Markdown(e *entry.Entry, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", e.Day.Format(layoutLong))
	for _, f := range []struct {
		label string
		v     *string
	}{
		{entry.LabelIntention, e.Intention},
		{entry.LabelGoal, e.Goal},
		{entry.LabelReflection, e.Reflection},
		{entry.LabelMood, e.Mood},
	} {
		text := entry.Text(f.v)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", f.label, wordwrap.String(text, width))
	}
	return b.String()
}

// EntryMarkdown prints e as markdown. Styled renders through glamour for a
// terminal; otherwise the raw document is written.
func (pp *PrettyPrint) EntryMarkdown(e *entry.Entry, width int, styled bool) error {
	if width <= 0 {
		width = DefaultWidth
	}
	md := Markdown(e, width)
	if !styled {
		_, err := fmt.Fprint(pp.out(), md)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(pp.out(), out)
	return err
}
