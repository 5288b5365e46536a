package insights

import (
	"errors"
	"fmt"
	"time"

	"spendsense-go/internal/store"
)

const (
	Period30Days = "30d"
	Period90Days = "90d"

	DateLayout = "2006-01-02"
)

var (
	// ErrInvalidPeriod is returned for any period other than 30d or 90d.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrDataFetch wraps any failure reading transactions or accounts.
	ErrDataFetch = errors.New("failed to fetch insights data")
)

var periodDays = map[string]int{
	Period30Days: 30,
	Period90Days: 90,
}

// Window is an inclusive range of civil dates derived from a period.
type Window struct {
	Period string
	Start  time.Time
	End    time.Time
}

// Bucket is one weekly slice of a window. The last bucket may be shorter than 7 days.
type Bucket struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow anchors the period at reference. End is the reference date and
// Start is exactly N days earlier; no calendar-month arithmetic is involved.
func ResolveWindow(period string, reference time.Time) (Window, error) {
	days, ok := periodDays[period]
	if !ok {
		return Window{}, fmt.Errorf("%w %q: use '30d' or '90d'", ErrInvalidPeriod, period)
	}

	end := civilDate(reference)
	return Window{
		Period: period,
		Start:  end.AddDate(0, 0, -days),
		End:    end,
	}, nil
}

// Days is the averaging denominator.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

// Contains reports whether d falls on or between Start and End.
func (w Window) Contains(d time.Time) bool {
	day := civilDate(d)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Buckets partitions the window into contiguous 7-day buckets starting at Start.
func (w Window) Buckets() []Bucket {
	var buckets []Bucket
	for current := w.Start; !current.After(w.End); {
		end := current.AddDate(0, 0, 6)
		if end.After(w.End) {
			end = w.End
		}
		buckets = append(buckets, Bucket{Start: current, End: end})
		current = end.AddDate(0, 0, 1)
	}
	return buckets
}

// DateRange converts the window for store queries.
func (w Window) DateRange() *store.DateRange {
	return &store.DateRange{Start: w.Start, End: w.End}
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
