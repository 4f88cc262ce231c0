package schedule

import "testing"

func TestNormalizeDateCanonicalUnchanged(t *testing.T) {
	normalized, ok := NormalizeDate("2026-01-23")
	if !ok || normalized != "2026-01-23" {
		t.Fatalf("expected canonical input unchanged, got %q ok=%v", normalized, ok)
	}
}

func TestNormalizeDateDayFirst(t *testing.T) {
	cases := map[string]string{
		"23/01/2026": "2026-01-23",
		"1/2/2026":   "2026-02-01",
		"9-4-2025":   "2025-04-09",
		"23-01-2026": "2026-01-23",
	}
	for input, expect := range cases {
		normalized, ok := NormalizeDate(input)
		if !ok {
			t.Fatalf("expected %q to normalize", input)
		}
		if normalized != expect {
			t.Fatalf("expected %q -> %q, got %q", input, expect, normalized)
		}
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	once, ok := NormalizeDate("23/01/2026")
	if !ok {
		t.Fatalf("expected first normalization to succeed")
	}
	twice, ok := NormalizeDate(once)
	if !ok || twice != once {
		t.Fatalf("expected idempotent normalization, got %q then %q", once, twice)
	}
}

func TestNormalizeDateGenericFallback(t *testing.T) {
	normalized, ok := NormalizeDate("January 24, 2026")
	if !ok || normalized != "2026-01-24" {
		t.Fatalf("expected generic parse, got %q ok=%v", normalized, ok)
	}
}

func TestNormalizeDateUnparseableReturnsOriginal(t *testing.T) {
	for _, input := range []string{"not a date", "", "32/13/2026"} {
		normalized, ok := NormalizeDate(input)
		if ok {
			t.Fatalf("expected %q to be flagged unparseable", input)
		}
		if normalized != input {
			t.Fatalf("expected original %q back, got %q", input, normalized)
		}
	}
}

func TestNormalizeTimeRange(t *testing.T) {
	cases := map[string]string{
		"10:00-12:00":   "10:00-12:00",
		"10:00 - 12:00": "10:00-12:00",
		"10:00–12:00":   "10:00-12:00",
		"10:00":         "10:00",
	}
	for input, expect := range cases {
		if got := NormalizeTimeRange(input); got != expect {
			t.Fatalf("expected %q -> %q, got %q", input, expect, got)
		}
	}
}

func TestSplitTimeRange(t *testing.T) {
	start, end := SplitTimeRange("10:00 – 12:00")
	if start != "10:00" || end != "12:00" {
		t.Fatalf("expected 10:00/12:00, got %q/%q", start, end)
	}
	start, end = SplitTimeRange("10:00")
	if start != "10:00" || end != "" {
		t.Fatalf("expected whole string as start, got %q/%q", start, end)
	}
}
