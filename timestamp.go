package stockinfo

import "time"

// Timestamp is a point in time as reported by an upstream source. A naive
// timestamp only carries wall clock fields and gets its zone from the
// exchange it belongs to.
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

func Zoned(t time.Time) Timestamp {
	return Timestamp{Time: t, Zoned: true}
}

// Naive drops the location of t and keeps its wall clock.
func Naive(t time.Time) Timestamp {
	return Timestamp{Time: wallClock(t, time.UTC)}
}

func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

// In converts a zoned timestamp to loc and localizes a naive one to loc.
func (t Timestamp) In(loc *time.Location) time.Time {
	if t.Zoned {
		return t.Time.In(loc)
	}
	return wallClock(t.Time, loc)
}

// Date formats the calendar date of t in loc.
func (t Timestamp) Date(loc *time.Location) string {
	return t.In(loc).Format(DateFormat)
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
}

// Midnight returns the start of the day of t in its own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
