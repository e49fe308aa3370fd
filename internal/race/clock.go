package race

import (
	"fmt"
	"time"

	"github.com/terra-clan/swim-timer/internal/models"
)

// Clock tracks the race lifecycle and measures elapsed time from the start instant.
// Instants must come from a monotonic source such as time.Now.
// Clock is not safe for concurrent use; Engine serializes access to it.
type Clock struct {
	state   models.RaceState
	started time.Time
	final   time.Duration
}

// NewClock creates an idle clock
func NewClock() *Clock {
	return &Clock{state: models.RaceIdle}
}

// State returns the current lifecycle state
func (c *Clock) State() models.RaceState {
	return c.state
}

// Start moves the clock to running from idle or stopped
func (c *Clock) Start(now time.Time) error {
	if c.state == models.RaceRunning {
		return fmt.Errorf("%w: race is already running", ErrInvalidState)
	}
	c.state = models.RaceRunning
	c.started = now
	c.final = 0
	return nil
}

// Elapsed returns the time since start. Only valid while running.
func (c *Clock) Elapsed(now time.Time) (time.Duration, error) {
	if c.state != models.RaceRunning {
		return 0, fmt.Errorf("%w: clock is %s", ErrNotRunning, c.state)
	}
	d := now.Sub(c.started)
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Stop freezes a running clock. It reports false without error when the
// clock was already stopped, so duplicate stop requests are harmless.
func (c *Clock) Stop(now time.Time) (bool, error) {
	switch c.state {
	case models.RaceStopped:
		return false, nil
	case models.RaceIdle:
		return false, fmt.Errorf("%w: race has not started", ErrInvalidState)
	}

	d, _ := c.Elapsed(now)
	c.final = d
	c.state = models.RaceStopped
	return true, nil
}

// Reset returns the clock to idle and forgets the start instant
func (c *Clock) Reset() {
	c.state = models.RaceIdle
	c.started = time.Time{}
	c.final = 0
}

// StartedAt returns the start instant, zero when idle
func (c *Clock) StartedAt() time.Time {
	return c.started
}

// Final returns the race duration frozen at stop, zero unless stopped
func (c *Clock) Final() time.Duration {
	return c.final
}
