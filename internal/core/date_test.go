package core

import "testing"

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 15 {
		t.Errorf("expected 2025-03-15, got %s", d)
	}
	for _, bad := range []string{"", "15/03/2025", "2025-13-01", "2025-02-30", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("%q should not parse", bad)
		}
	}
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		start  string
		months int
		want   string
	}{
		{"2025-01-31", 1, "2025-02-28"},
		{"2024-01-31", 1, "2024-02-29"}, // leap year
		{"2025-01-31", 2, "2025-03-31"},
		{"2025-03-31", 1, "2025-04-30"},
		{"2025-05-15", 1, "2025-06-15"},
		{"2025-11-30", 3, "2026-02-28"},
	}
	for _, tc := range cases {
		start, _ := ParseDate(tc.start)
		if got := start.AddMonths(tc.months).String(); got != tc.want {
			t.Errorf("%s +%dmo: expected %s, got %s", tc.start, tc.months, tc.want, got)
		}
	}
}

func TestAddYearsClampsLeapDay(t *testing.T) {
	start, _ := ParseDate("2024-02-29")
	if got := start.AddYears(1).String(); got != "2025-02-28" {
		t.Errorf("expected 2025-02-28, got %s", got)
	}
}

func TestDateComparisons(t *testing.T) {
	a, _ := ParseDate("2025-06-01")
	b, _ := ParseDate("2025-06-02")
	if !a.Before(b) || b.Before(a) {
		t.Error("Before comparison wrong")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After comparison wrong")
	}
	if !a.OnOrBefore(a) || !a.OnOrBefore(b) || b.OnOrBefore(a) {
		t.Error("OnOrBefore comparison wrong")
	}
}

func TestMonthsUntil(t *testing.T) {
	cases := []struct {
		from, to string
		want     int
	}{
		{"2025-01-15", "2025-07-15", 6},
		{"2025-01-15", "2025-01-20", 0},
		{"2025-07-15", "2025-01-15", 0}, // past dates floor at zero
		{"2025-11-01", "2026-02-01", 3},
	}
	for _, tc := range cases {
		from, _ := ParseDate(tc.from)
		to, _ := ParseDate(tc.to)
		if got := from.MonthsUntil(to); got != tc.want {
			t.Errorf("%s -> %s: expected %d months, got %d", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	from, _ := ParseDate("2025-06-01")
	to, _ := ParseDate("2025-06-08")
	if got := from.DaysUntil(to); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := to.DaysUntil(from); got != -7 {
		t.Errorf("expected -7, got %d", got)
	}
}
