package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/tabby/pkg/calendar"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/widget"
)

func init() {
	color.NoColor = true
}

func TestEntryPrintsFields(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Entry(&entry.Entry{
		Day:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Intention: entry.String("Walk the dog"),
		Goal:      entry.String("Finish report"),
	})

	out := buf.String()
	for _, want := range []string{"Friday, March 1, 2024", "Walk the dog", "Finish report", "Reflection"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEntriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Entries("March", nil...)
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none marker:\n%s", buf.String())
	}
}

func TestWidgetShowsPlaceholders(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Widget(widget.Resolve(nil, entry.String("Finish report")))
	out := buf.String()
	if !strings.Contains(out, widget.PlaceholderIntention) || !strings.Contains(out, "Finish report") {
		t.Fatalf("unexpected widget output:\n%s", out)
	}
}

func TestMonthGrid(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	focus := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	pp.Month(focus, focus, []calendar.Day{{Date: focus, HasEntry: true}})

	out := buf.String()
	if !strings.Contains(out, "March 2024") {
		t.Fatalf("missing month header:\n%s", out)
	}
	// March 2024 starts on a Friday: five blank cells.
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[2], strings.Repeat("   ", 5)+" 1  2") {
		t.Fatalf("unexpected first week %q", lines[2])
	}
	if !strings.Contains(out, "31") {
		t.Fatalf("missing last day:\n%s", out)
	}
}

func TestMarkdownSkipsEmptyFieldsAndWraps(t *testing.T) {
	md := Markdown(&entry.Entry{
		Day:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Intention:  entry.String("Be present"),
		Reflection: entry.String("one two three four five six"),
	}, 10)

	if !strings.HasPrefix(md, "# Friday, March 1, 2024\n") {
		t.Fatalf("unexpected heading:\n%s", md)
	}
	if strings.Contains(md, "## Goal") {
		t.Fatalf("empty goal rendered:\n%s", md)
	}
	if !strings.Contains(md, "## Reflection\n\none two\nthree four\nfive six\n") {
		t.Fatalf("reflection not wrapped:\n%s", md)
	}
}

func TestEntryMarkdownPlain(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	e := &entry.Entry{Day: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Goal: entry.String("Ship")}
	if err := pp.EntryMarkdown(e, 0, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != Markdown(e, DefaultWidth) {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
