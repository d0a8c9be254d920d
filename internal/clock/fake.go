package clock

import "time"

// FakeClock is a manually advanced Clock for job tests. Times are held in
// UTC like the system clock the engine runs on.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward, simulating elapsed wall time between
// scheduler ticks.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
