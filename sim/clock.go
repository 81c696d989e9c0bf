package sim

import "time"

// Clock supplies one (delta, elapsed) sample per frame, in seconds. The
// first sample has delta 0.
type Clock interface {
	Sample() (delta, elapsed float64)
}

// WallClock reads the monotonic wall clock.
type WallClock struct {
	now     func() time.Time
	start   time.Time
	last    time.Time
	started bool
}

func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

func (c *WallClock) Sample() (float64, float64) {
	t := c.now()
	if !c.started {
		c.start, c.last, c.started = t, t, true
		return 0, 0
	}
	delta := t.Sub(c.last).Seconds()
	c.last = t
	return delta, t.Sub(c.start).Seconds()
}

// ManualClock advances by Step on every sample after the first.
type ManualClock struct {
	Step    float64
	elapsed float64
	started bool
}

func (c *ManualClock) Sample() (float64, float64) {
	if !c.started {
		c.started = true
		return 0, 0
	}
	c.elapsed += c.Step
	return c.Step, c.elapsed
}
