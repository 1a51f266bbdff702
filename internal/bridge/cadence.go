package bridge

import "time"

// DefaultInterval is ten frames at 60 Hz.
const DefaultInterval = 166 * time.Millisecond

// Cadence fires at most once per Interval of wall-clock time.
type Cadence struct {
	Interval time.Duration

	last   time.Time
	primed bool
}

// Ready reports whether an interval has passed since it last returned true.
// The first call is always ready.
func (c *Cadence) Ready(now time.Time) bool {
	iv := c.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	if c.primed && now.Sub(c.last) < iv {
		return false
	}
	c.last = now
	c.primed = true
	return true
}

// Reset makes the next Ready call fire.
func (c *Cadence) Reset() { c.primed = false }
