package chip8

import "time"

// TimerInterval is the period of the delay and sound timers.
const TimerInterval = time.Second / 60

// Clock decouples the host's instruction rate from the fixed 60 Hz timer
// cadence. It accumulates elapsed wall-clock time and reports one tick per
// elapsed TimerInterval, carrying the remainder over to the next call.
type Clock struct {
	last time.Time
	acc  time.Duration
}

func NewClock(now time.Time) *Clock {
	return &Clock{last: now}
}

// Ticks returns the number of whole timer periods that elapsed since the
// previous call. The caller applies that many TickTimers calls.
func (c *Clock) Ticks(now time.Time) int {
	elapsed := now.Sub(c.last)
	c.last = now
	if elapsed < 0 {
		return 0
	}

	c.acc += elapsed
	n := int(c.acc / TimerInterval)
	c.acc -= time.Duration(n) * TimerInterval
	return n
}
