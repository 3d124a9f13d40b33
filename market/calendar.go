// Package market answers exchange-calendar questions for the NSE cash
// session: is the market open, why not, and how long until it next opens.
package market

import "time"

// NSE session bounds, IST.
const (
	OpenHour   = 9
	OpenMinute = 15

	CloseHour   = 15
	CloseMinute = 30
)

// Schedule is a stateless view of the exchange calendar. Override forces
// IsOpen to report open, for out-of-hours testing; it never affects
// UntilOpen, which always reports the real distance to the next session.
type Schedule struct {
	Loc      *time.Location
	Override bool
}

// NewSchedule builds an NSE schedule pinned to IST. If the tz database is
// unavailable the fixed +05:30 offset is used; IST has no DST.
func NewSchedule(override bool) *Schedule {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &Schedule{Loc: loc, Override: override}
}

// Now returns the current wall-clock time in exchange local time.
func (s *Schedule) Now() time.Time {
	return time.Now().In(s.Loc)
}

// IsOpen reports whether t falls inside the trading session. Weekends are
// closed; the session window is inclusive on both ends.
func (s *Schedule) IsOpen(t time.Time) bool {
	if s.Override {
		return true
	}

	t = t.In(s.Loc)
	if isWeekend(t) {
		return false
	}

	m := minuteOfDay(t)
	return m >= openMinuteOfDay && m <= closeMinuteOfDay
}

// Status returns a human-readable market state for t.
func (s *Schedule) Status(t time.Time) string {
	t = t.In(s.Loc)

	if isWeekend(t) {
		return "CLOSED (Weekend)"
	}

	switch m := minuteOfDay(t); {
	case m < openMinuteOfDay:
		return "CLOSED (Pre-Market)"
	case m > closeMinuteOfDay:
		return "CLOSED (Post-Market)"
	default:
		return "OPEN (Live)"
	}
}

// UntilOpen returns the duration from t until the next session open,
// crossing weekend boundaries. Zero if the market is already open at t.
func (s *Schedule) UntilOpen(t time.Time) time.Duration {
	t = t.In(s.Loc)

	if !isWeekend(t) {
		m := minuteOfDay(t)
		if m >= openMinuteOfDay && m <= closeMinuteOfDay {
			return 0
		}
	}

	open := time.Date(t.Year(), t.Month(), t.Day(), OpenHour, OpenMinute, 0, 0, s.Loc)
	if t.Before(open) && !isWeekend(t) {
		return open.Sub(t)
	}

	// Post-close or weekend: walk forward to the next trading weekday.
	open = open.AddDate(0, 0, 1)
	for isWeekend(open) {
		open = open.AddDate(0, 0, 1)
	}
	return open.Sub(t)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

const (
	openMinuteOfDay  = OpenHour*60 + OpenMinute
	closeMinuteOfDay = CloseHour*60 + CloseMinute
)

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
