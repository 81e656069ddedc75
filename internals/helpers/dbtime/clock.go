// file: internals/helpers/dbtime/clock.go
package dbtime

import "time"

// Clock is the single time source for the attendance core. QR validity and
// business-hours checks are tested by injecting a fixed clock, so services
// must never call time.Now directly.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func RealClock() Clock { return realClock{} }

// FixedClock always returns the same instant. Test helper.
type FixedClock struct{ T time.Time }

func (f FixedClock) Now() time.Time { return f.T }

// DateIn truncates t to a calendar date in loc (midnight, loc).
func DateIn(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// SameOrFutureDate reports whether d (a date) is today or later as seen in loc.
func SameOrFutureDate(d time.Time, now time.Time, loc *time.Location) bool {
	today := DateIn(now, loc)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return !day.Before(today)
}
