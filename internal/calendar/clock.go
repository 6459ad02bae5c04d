package calendar

import "time"

// Clock supplies the current instant and the location that defines "a day".
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// SystemClock reads wall time in a fixed location.
type SystemClock struct{ Loc *time.Location }

// NewSystemClock returns a clock for loc (time.Local when nil).
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return SystemClock{Loc: loc}
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time { return time.Now().In(c.Loc) }

// Location returns the clock's location.
func (c SystemClock) Location() *time.Location { return c.Loc }

// Today returns the current calendar date as seen by c.
func Today(c Clock) Date { return DateOf(c.Now().In(c.Location())) }

// DayRange returns the half-open range [midnight(d), midnight(d+1)) in loc.
// The upper bound is computed from the next date rather than +24h so that
// DST transitions yield 23h or 25h days.
func DayRange(d Date, loc *time.Location) (from, to time.Time) {
	return d.Midnight(loc), d.AddDays(1).Midnight(loc)
}

// NextMidnightAfter returns the first local midnight strictly after t.
func NextMidnightAfter(t time.Time, loc *time.Location) time.Time {
	return DateOf(t.In(loc)).AddDays(1).Midnight(loc)
}

// EndOfDay returns the last second of d in loc (23:59:59).
func EndOfDay(d Date, loc *time.Location) time.Time {
	return d.AddDays(1).Midnight(loc).Add(-time.Second)
}
