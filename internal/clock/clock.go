// Package clock abstracts wall-clock time so billing-cycle math is testable.
package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock yields the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystem returns the wall clock.
func NewSystem() Clock { return systemClock{} }

// CycleStart returns the first instant of the calendar month containing t,
// in t's location. The billing cycle is calendar-month aligned for every
// line; there is no per-line proration.
func CycleStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthWindow returns the half-open interval [start, end) of the calendar
// month offset months back from t (offset 0 is the current month).
func MonthWindow(t time.Time, offset int) (time.Time, time.Time) {
	start := CycleStart(t).AddDate(0, -offset, 0)
	return start, start.AddDate(0, 1, 0)
}

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystem),
)
