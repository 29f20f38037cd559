// Package businesshours measures elapsed time counting only working hours.
package businesshours

import "time"

// Calendar describes the weekly business window: the same [Start, End)
// hours on each listed weekday, in Location.
type Calendar struct {
	Location *time.Location
	Start    int
	End      int
	Weekdays map[time.Weekday]bool
}

// NewCalendar returns a Monday to Friday calendar open from start to end
// hours. A nil location means UTC.
func NewCalendar(loc *time.Location, start, end int) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{
		Location: loc,
		Start:    start,
		End:      end,
		Weekdays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
	}
}

// valid reports whether the calendar has a non-empty daily window and at
// least one open weekday.
func (c Calendar) valid() bool {
	if c.Start < 0 || c.End > 24 || c.Start >= c.End {
		return false
	}
	for _, open := range c.Weekdays {
		if open {
			return true
		}
	}
	return false
}

func (c Calendar) window(t time.Time) (opens, closes time.Time) {
	y, m, d := t.Date()
	opens = time.Date(y, m, d, c.Start, 0, 0, 0, c.Location)
	closes = time.Date(y, m, d, c.End, 0, 0, 0, c.Location)
	return opens, closes
}

// Within reports whether t falls inside a business window.
func (c Calendar) Within(t time.Time) bool {
	if !c.valid() {
		return false
	}
	t = t.In(c.Location)
	if !c.Weekdays[t.Weekday()] {
		return false
	}
	opens, closes := c.window(t)
	return !t.Before(opens) && t.Before(closes)
}

// NextOpen returns t itself when inside business hours, otherwise the start
// of the next business window.
func (c Calendar) NextOpen(t time.Time) time.Time {
	t = t.In(c.Location)
	if !c.valid() {
		return t
	}
	for i := 0; i < 8; i++ {
		if c.Weekdays[t.Weekday()] {
			opens, closes := c.window(t)
			if t.Before(opens) {
				return opens
			}
			if t.Before(closes) {
				return t
			}
		}
		y, m, d := t.Date()
		t = time.Date(y, m, d+1, 0, 0, 0, 0, c.Location)
	}
	return t
}

// Elapsed returns the business time between from and to. It walks forward
// window by window, adding the overlap of each business window with the
// interval. The result is zero when to is not after from.
func (c Calendar) Elapsed(from, to time.Time) time.Duration {
	if !c.valid() || !to.After(from) {
		return 0
	}

	var total time.Duration
	cur := from.In(c.Location)
	for cur.Before(to) {
		cur = c.NextOpen(cur)
		if !cur.Before(to) {
			break
		}
		_, closes := c.window(cur)
		end := closes
		if to.Before(end) {
			end = to
		}
		total += end.Sub(cur)
		cur = closes
	}
	return total
}
