package insights

import (
	"errors"
	"testing"
	"time"
)

var today = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolveWindow(t *testing.T) {
	tests := []struct {
		period        string
		expectedStart string
		expectedDays  int
	}{
		{Period30Days, "2026-09-15", 30},
		{Period90Days, "2026-07-17", 90},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			w, err := ResolveWindow(tt.period, today)
			if err != nil {
				t.Fatalf("ResolveWindow failed: %v", err)
			}
			if got := w.End.Sub(w.Start); got != time.Duration(tt.expectedDays)*24*time.Hour {
				t.Errorf("Expected %d days between start and end, got %v", tt.expectedDays, got)
			}
			if w.Days() != tt.expectedDays {
				t.Errorf("Expected Days()=%d, got %d", tt.expectedDays, w.Days())
			}
			if w.Start.Format(DateLayout) != tt.expectedStart {
				t.Errorf("Expected start %s, got %s", tt.expectedStart, w.Start.Format(DateLayout))
			}
			if !w.End.Equal(today) {
				t.Errorf("Expected end %s, got %s", today, w.End)
			}
		})
	}
}

func TestResolveWindow_TruncatesReferenceTime(t *testing.T) {
	reference := time.Date(2026, 10, 15, 23, 59, 59, 0, time.UTC)
	w, err := ResolveWindow(Period30Days, reference)
	if err != nil {
		t.Fatalf("ResolveWindow failed: %v", err)
	}
	if !w.End.Equal(today) {
		t.Errorf("Expected end at midnight %s, got %s", today, w.End)
	}
}

func TestResolveWindow_InvalidPeriod(t *testing.T) {
	for _, period := range []string{"60d", "", "30", "30D", "1y"} {
		_, err := ResolveWindow(period, today)
		if !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("Period %q: expected ErrInvalidPeriod, got %v", period, err)
		}
	}
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)

	tests := []struct {
		date     string
		expected bool
	}{
		{"2026-09-14", false},
		{"2026-09-15", true},
		{"2026-10-01", true},
		{"2026-10-15", true},
		{"2026-10-16", false},
	}

	for _, tt := range tests {
		if got := w.Contains(day(tt.date)); got != tt.expected {
			t.Errorf("Contains(%s): expected %v, got %v", tt.date, tt.expected, got)
		}
	}
}

func TestWindowBuckets(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)
	buckets := w.Buckets()

	expectedEnds := []string{"2026-09-21", "2026-09-28", "2026-10-05", "2026-10-12", "2026-10-15"}
	if len(buckets) != len(expectedEnds) {
		t.Fatalf("Expected %d buckets, got %d", len(expectedEnds), len(buckets))
	}
	for i, b := range buckets {
		if b.End.Format(DateLayout) != expectedEnds[i] {
			t.Errorf("Bucket %d: expected end %s, got %s", i, expectedEnds[i], b.End.Format(DateLayout))
		}
		if i > 0 && !b.Start.Equal(buckets[i-1].End.AddDate(0, 0, 1)) {
			t.Errorf("Bucket %d is not contiguous with the previous one", i)
		}
	}
	if !buckets[0].Start.Equal(w.Start) {
		t.Errorf("First bucket should start at window start")
	}

	w90, _ := ResolveWindow(Period90Days, today)
	if got := len(w90.Buckets()); got != 13 {
		t.Errorf("Expected 13 buckets for 90d, got %d", got)
	}
}

func TestWindowBuckets_Degenerate(t *testing.T) {
	w := Window{Period: "custom", Start: today, End: today}
	if w.Days() != 0 {
		t.Errorf("Expected 0 days, got %d", w.Days())
	}
	buckets := w.Buckets()
	if len(buckets) != 1 || !buckets[0].End.Equal(today) {
		t.Errorf("Expected a single one-day bucket, got %+v", buckets)
	}
}
