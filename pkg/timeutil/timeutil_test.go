package timeutil

import (
	"testing"
	"time"
)

func TestParseSpanDefault(t *testing.T) {
	s, err := ParseSpan("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != (Span{Days: 7}) {
		t.Fatalf("expected one week, got %+v", s)
	}
	if s.String() != "1w" {
		t.Fatalf("expected label 1w, got %s", s)
	}
}

func TestParseSpanComposite(t *testing.T) {
	s, err := ParseSpan("1y2mo1w3d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Span{Years: 1, Months: 2, Days: 10}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
	if s.String() != "1y2mo1w3d" {
		t.Fatalf("unexpected label: %s", s)
	}
}

func TestParseSpanErrors(t *testing.T) {
	for _, in := range []string{"abc", "3x", "0d"} {
		if _, err := ParseSpan(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestSpanStart(t *testing.T) {
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if got := (Span{Days: 7}).Start(end); !got.Equal(time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week start: %v", got)
	}
	if got := (Span{Months: 1}).Start(end); !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("month start: %v", got)
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"today", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"Yesterday", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{"2024-3-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2023-12-05", time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC)},
		{"1/1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"12/30", time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		got, err := ParseDay(tc.in, now, time.UTC)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.want, got)
		}
	}
	if _, err := ParseDay("someday", now, time.UTC); err == nil {
		t.Fatal("expected error")
	}
}
