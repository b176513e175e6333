package domain

import "time"

// CadenceKind classifies the repeat pattern of an obligation.
type CadenceKind string

const (
	CadenceWeekly      CadenceKind = "weekly"
	CadenceFortnightly CadenceKind = "fortnightly"
	CadenceMonthly     CadenceKind = "monthly"
	CadenceCustom      CadenceKind = "custom"
)

// Cadence describes when an obligation recurs. Monthly cadences anchor on a
// day of month; weekly and fortnightly anchor on a weekday; custom cadences
// repeat every IntervalDays from an anchor date.
type Cadence struct {
	Kind         CadenceKind
	DayOfMonth   int          // monthly
	Weekday      time.Weekday // weekly, fortnightly
	IntervalDays int          // custom, and the stride for fortnightly
	Anchor       time.Time    // last observed occurrence, date-only UTC
}

// OccursOn reports whether the cadence places an occurrence on the given date.
func (c Cadence) OccursOn(date time.Time) bool {
	date = DateOnly(date)

	switch c.Kind {
	case CadenceMonthly:
		return date.Day() == c.clampedDayOfMonth(date)
	case CadenceWeekly:
		return date.Weekday() == c.Weekday
	case CadenceFortnightly:
		if date.Weekday() != c.Weekday {
			return false
		}
		days := int(date.Sub(DateOnly(c.Anchor)).Hours() / 24)
		return days >= 0 && days%14 == 0
	case CadenceCustom:
		if c.IntervalDays <= 0 {
			return false
		}
		days := int(date.Sub(DateOnly(c.Anchor)).Hours() / 24)
		return days >= 0 && days%c.IntervalDays == 0
	}

	return false
}

// NextAfter returns the first occurrence strictly after the given date.
func (c Cadence) NextAfter(date time.Time) time.Time {
	d := DateOnly(date).AddDate(0, 0, 1)

	// Bounded scan; the longest gap between occurrences is one month plus
	// clamping slack, custom intervals are capped by the detector.
	for i := 0; i < 400; i++ {
		if c.OccursOn(d) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}

	return d
}

// clampedDayOfMonth maps day 29-31 onto the last day of short months, so a
// "31st of the month" obligation still lands in February.
func (c Cadence) clampedDayOfMonth(date time.Time) int {
	last := DateOnly(time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, time.UTC)).Day()
	if c.DayOfMonth > last {
		return last
	}
	return c.DayOfMonth
}

// DateOnly truncates a timestamp to midnight UTC. All pipeline date math
// happens on these values.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
