package businesshours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func at(day, hour, minute int) time.Time {
	// February 2024: the 2nd is a Friday, the 5th a Monday.
	return time.Date(2024, time.February, day, hour, minute, 0, 0, saoPaulo)
}

func TestWithin(t *testing.T) {
	cal := NewCalendar(saoPaulo, 8, 18)

	assert.True(t, cal.Within(at(2, 8, 0)))
	assert.True(t, cal.Within(at(2, 17, 59)))
	assert.False(t, cal.Within(at(2, 18, 0)))
	assert.False(t, cal.Within(at(2, 7, 59)))
	assert.False(t, cal.Within(at(3, 12, 0)), "saturday")
	assert.True(t, cal.Within(at(2, 12, 0).UTC()), "converted to calendar zone")
}

func TestNextOpen(t *testing.T) {
	cal := NewCalendar(saoPaulo, 8, 18)

	assert.Equal(t, at(5, 8, 0), cal.NextOpen(at(2, 18, 30)))
	assert.Equal(t, at(5, 8, 0), cal.NextOpen(at(4, 10, 0)))
	assert.Equal(t, at(6, 8, 0), cal.NextOpen(at(5, 19, 0)))
	assert.Equal(t, at(5, 8, 0), cal.NextOpen(at(5, 6, 0)))
	assert.Equal(t, at(5, 9, 0), cal.NextOpen(at(5, 9, 0)))
}

func TestElapsed(t *testing.T) {
	cal := NewCalendar(saoPaulo, 8, 18)

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want time.Duration
	}{
		{"friday evening to monday morning", at(2, 17, 55), at(5, 8, 10), 15 * time.Minute},
		{"same window", at(5, 9, 0), at(5, 9, 30), 30 * time.Minute},
		{"overnight", at(5, 17, 0), at(6, 9, 0), 2 * time.Hour},
		{"full week", at(5, 8, 0), at(12, 8, 0), 50 * time.Hour},
		{"weekend only", at(3, 9, 0), at(4, 20, 0), 0},
		{"after hours same day", at(5, 18, 5), at(5, 23, 0), 0},
		{"before open", at(5, 6, 0), at(5, 8, 1), time.Minute},
		{"reversed", at(5, 10, 0), at(5, 9, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.Elapsed(tt.from, tt.to))
		})
	}
}

func TestElapsedMatchesSecondWalk(t *testing.T) {
	cal := NewCalendar(saoPaulo, 8, 18)
	from := at(2, 17, 58)
	to := at(5, 8, 3)

	var walked time.Duration
	for cur := from; cur.Before(to); cur = cur.Add(time.Second) {
		if cal.Within(cur) {
			walked += time.Second
		}
	}

	assert.Equal(t, walked, cal.Elapsed(from, to))
}

func TestCalculatorSeconds(t *testing.T) {
	cal := NewCalendar(saoPaulo, 8, 18)

	business := NewCalculator(cal, true, 0)
	assert.Equal(t, int64(900), business.Seconds(at(2, 17, 55), at(5, 8, 10)))
	assert.Equal(t, "business_hours", business.Mode())
	assert.Equal(t, DefaultMax, business.Max)

	wall := NewCalculator(cal, false, 0)
	assert.Equal(t, int64(62*3600+15*60), wall.Seconds(at(2, 17, 55), at(5, 8, 10)))
	assert.Equal(t, int64(-60), wall.Seconds(at(5, 9, 1), at(5, 9, 0)))
	assert.Equal(t, "wall_clock", wall.Mode())
}

func TestCalculatorAccept(t *testing.T) {
	c := NewCalculator(NewCalendar(nil, 8, 18), false, 0)

	assert.False(t, c.Accept(0))
	assert.False(t, c.Accept(-5))
	assert.True(t, c.Accept(1))
	assert.True(t, c.Accept(86399))
	assert.False(t, c.Accept(86400))

	short := NewCalculator(NewCalendar(nil, 8, 18), false, time.Minute)
	assert.False(t, short.Accept(60))
	assert.True(t, short.Accept(59))
}

func TestInvalidCalendar(t *testing.T) {
	cal := NewCalendar(saoPaulo, 18, 8)
	assert.Equal(t, time.Duration(0), cal.Elapsed(at(5, 9, 0), at(5, 10, 0)))
	assert.False(t, cal.Within(at(5, 9, 0)))
}

func TestCalendarWithoutOpenDays(t *testing.T) {
	cal := NewCalendar(saoPaulo, 8, 18)
	cal.Weekdays = map[time.Weekday]bool{time.Monday: false, time.Saturday: false}

	start := at(5, 9, 0)
	assert.False(t, cal.Within(start))
	assert.True(t, start.Equal(cal.NextOpen(start)))
	assert.Equal(t, time.Duration(0), cal.Elapsed(start, at(5, 17, 0)))
}
