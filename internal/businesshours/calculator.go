package businesshours

import "time"

// DefaultMax is the longest response time that is still recorded.
const DefaultMax = 24 * time.Hour

// Calculator computes response times between a customer message and the
// agent reply.
type Calculator struct {
	Calendar      Calendar
	BusinessHours bool
	Max           time.Duration
}

// NewCalculator creates a calculator. With businessHours false it measures
// plain wall-clock time. A zero limit means DefaultMax.
func NewCalculator(cal Calendar, businessHours bool, limit time.Duration) *Calculator {
	if limit <= 0 {
		limit = DefaultMax
	}
	return &Calculator{Calendar: cal, BusinessHours: businessHours, Max: limit}
}

// Mode names the measurement in use.
func (c *Calculator) Mode() string {
	if c.BusinessHours {
		return "business_hours"
	}
	return "wall_clock"
}

// Seconds returns the response time in whole seconds. It may be zero or
// negative for out-of-order timestamps.
func (c *Calculator) Seconds(customer, agent time.Time) int64 {
	if c.BusinessHours {
		return int64(c.Calendar.Elapsed(customer, agent) / time.Second)
	}
	return int64(agent.Sub(customer) / time.Second)
}

// Accept reports whether a measured response time should be recorded:
// strictly positive and shorter than Max.
func (c *Calculator) Accept(seconds int64) bool {
	return seconds > 0 && time.Duration(seconds)*time.Second < c.Max
}
