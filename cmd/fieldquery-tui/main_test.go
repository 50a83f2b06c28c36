package main

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this one is far too long", 10, "this on..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, ""},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.limit); got != c.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", c.in, c.limit, got, c.want)
		}
	}
}

func TestCompactSingleLine(t *testing.T) {
	got := compactSingleLine("  multi\n line \t text  ", 80)
	if got != "multi line text" {
		t.Fatalf("unexpected compact form: %q", got)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox jumps", 10)
	want := "the quick\nbrown fox\njumps"
	if got != want {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
	if wrapText("untouched", 0) != "untouched" {
		t.Fatalf("zero width must leave text alone")
	}
	if wrapText("a\n\nb", 20) != "a\n\nb" {
		t.Fatalf("blank lines must survive wrapping")
	}
}

func TestClampInt(t *testing.T) {
	if clampInt(2, 5, 600) != 5 {
		t.Fatalf("expected clamp up to minimum")
	}
	if clampInt(1000, 5, 600) != 600 {
		t.Fatalf("expected clamp down to maximum")
	}
	if clampInt(42, 5, 600) != 42 {
		t.Fatalf("expected in-range value unchanged")
	}
}

func TestEnvOrBool(t *testing.T) {
	cases := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"1", false, true},
		{"yes", false, true},
		{"ON", false, true},
		{"0", true, false},
		{"no", true, false},
		{"gibberish", true, true},
		{"", false, false},
	}
	for _, c := range cases {
		t.Setenv("FIELDQUERY_TEST_BOOL", c.value)
		if got := envOrBool("FIELDQUERY_TEST_BOOL", c.fallback); got != c.want {
			t.Fatalf("envOrBool(%q, %v) = %v, want %v", c.value, c.fallback, got, c.want)
		}
	}
}

func TestEnvOrInt(t *testing.T) {
	t.Setenv("FIELDQUERY_TEST_INT", "45")
	if got := envOrInt("FIELDQUERY_TEST_INT", 30); got != 45 {
		t.Fatalf("expected parsed value, got %d", got)
	}
	t.Setenv("FIELDQUERY_TEST_INT", "not-a-number")
	if got := envOrInt("FIELDQUERY_TEST_INT", 30); got != 30 {
		t.Fatalf("expected fallback for unparsable value, got %d", got)
	}
}

func TestNullCoalesce(t *testing.T) {
	if nullCoalesce("  ", "fallback") != "fallback" {
		t.Fatalf("blank value must fall through")
	}
	if nullCoalesce("value", "fallback") != "value" {
		t.Fatalf("non-blank value must win")
	}
}

func TestMaxDuration(t *testing.T) {
	if maxDuration(time.Second, 5*time.Second) != 5*time.Second {
		t.Fatalf("expected larger duration")
	}
}
