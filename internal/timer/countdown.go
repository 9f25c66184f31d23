// Package timer implements the per-question countdown. It holds no
// goroutines: the caller delivers one tick per second tagged with the
// generation returned by Start.
package timer

// Countdown is a cancellable, generation-tagged countdown. Only one
// countdown is live at a time; starting a new one invalidates ticks
// belonging to the previous one.
type Countdown struct {
	generation uint64
	remaining  int
	active     bool
	onExpire   func()
}

// Start cancels any running countdown and begins a new one of the given
// length. It returns the generation to tag ticks with. A non-positive
// length leaves the countdown inactive.
func (c *Countdown) Start(seconds int, onExpire func()) uint64 {
	c.Cancel()
	if seconds <= 0 {
		return c.generation
	}
	c.remaining = seconds
	c.active = true
	c.onExpire = onExpire
	return c.generation
}

// Cancel stops the countdown. Outstanding ticks become stale.
func (c *Countdown) Cancel() {
	c.generation++
	c.active = false
	c.remaining = 0
	c.onExpire = nil
}

// Tick advances the countdown by one second if gen is current. It reports
// whether the tick was accepted. When the countdown reaches zero it
// deactivates and calls onExpire synchronously.
func (c *Countdown) Tick(gen uint64) bool {
	if !c.active || gen != c.generation {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return true
	}
	c.remaining = 0
	c.active = false
	fn := c.onExpire
	c.onExpire = nil
	if fn != nil {
		fn()
	}
	return true
}

// Remaining returns the seconds left on the live countdown.
func (c *Countdown) Remaining() int { return c.remaining }

// Active reports whether a countdown is running.
func (c *Countdown) Active() bool { return c.active }

// Generation returns the current generation.
func (c *Countdown) Generation() uint64 { return c.generation }
