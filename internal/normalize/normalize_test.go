package normalize

import (
	"testing"
	"time"
)

func TestCentsFromString(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"$568.40", 56840, true},
		{"$1,000.00", 100000, true},
		{"100", 10000, true},
		{"$100", 10000, true},
		{"100.00", 10000, true},
		{"$4.35", 435, true},
		{"0", 0, true},
		{"$1,234.567", 123456, true},
		{"", 0, false},
		{"$", 0, false},
		{"abc", 0, false},
		{"$12x", 0, false},
	}
	for _, c := range cases {
		got, ok := CentsFromString(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("CentsFromString(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCentsIdempotence(t *testing.T) {
	// A canonical string and noisier equivalents normalize identically.
	want, ok := CentsFromString("$100.00")
	if !ok || want != 10000 {
		t.Fatalf("canonical parse failed: (%d, %v)", want, ok)
	}
	for _, in := range []string{"100", "$100", "100.00", " $100.00 "} {
		got, ok := CentsFromString(in)
		if !ok || got != want {
			t.Errorf("CentsFromString(%q) = (%d, %v), want (%d, true)", in, got, ok, want)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, c := range []int64{0, 1, 99, 100, 56840, 100000, 123456789} {
		s := FormatCents(c)
		got, ok := CentsFromString(s)
		if !ok || got != c {
			t.Errorf("round trip %d -> %q -> (%d, %v)", c, s, got, ok)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{56840, "$568.40"},
		{100000, "$1,000.00"},
		{5, "$0.05"},
		{123456789, "$1,234,567.89"},
		{-56840, "-$568.40"},
	}
	for _, c := range cases {
		if got := FormatCents(c.in); got != c.want {
			t.Errorf("FormatCents(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGallonsFromString(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,320 gallons", 1320, true},
		{"1500 gal", 1500, true},
		{"1,500 GALLONS", 1500, true},
		{"750", 750, true},
		{"", 0, false},
		{"gallons", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		got, ok := GallonsFromString(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("GallonsFromString(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestGallonsRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 750, 1320, 12500} {
		s := FormatGallons(v)
		got, ok := GallonsFromString(s)
		if !ok || got != v {
			t.Errorf("round trip %v -> %q -> (%v, %v)", v, s, got, ok)
		}
	}
}

func TestFormatGallons(t *testing.T) {
	if got := FormatGallons(1320); got != "1,320 gallons" {
		t.Errorf("FormatGallons(1320) = %q", got)
	}
	if got := FormatGallons(500); got != "500 gallons" {
		t.Errorf("FormatGallons(500) = %q", got)
	}
}

func TestDateFromString(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-01-08", "2026-01-08", true},
		{"1/8/2026", "2026-01-08", true},
		{"01/08/2026", "2026-01-08", true},
		{"01-08-2026", "2026-01-08", true},
		{"January 8, 2026", "2026-01-08", true},
		{"Jan 8, 2026", "2026-01-08", true},
		{"not a date", "", false},
		{"", "", false},
		{"13/45/2026", "", false},
	}
	for _, c := range cases {
		got, ok := DateFromString(c.in)
		if ok != c.ok {
			t.Errorf("DateFromString(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && FormatDateISO(got) != c.want {
			t.Errorf("DateFromString(%q) = %s, want %s", c.in, FormatDateISO(got), c.want)
		}
	}
}

func TestFormatDateDisplay(t *testing.T) {
	d := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	if got := FormatDateDisplay(d); got != "Jan 08, 2026" {
		t.Errorf("FormatDateDisplay = %q", got)
	}
}
