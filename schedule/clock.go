package schedule

import "time"

// Clock abstracts "now" so tests can pin the calendar.
type Clock interface {
	Now() time.Time
	Today() Date
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
func (systemClock) Today() Date { return DateOf(time.Now()) }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant. For tests.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }
func (c FixedClock) Today() Date { return DateOf(c.Instant) }
