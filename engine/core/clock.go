package core

import "time"

type Clock struct {
	startTime time.Time
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if !c.startTime.IsZero() {
		c.elapsed = time.Since(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.elapsed = 0
}

// Restart returns the elapsed time and starts the clock again.
func (c *Clock) Restart() time.Duration {
	c.Update()
	e := c.elapsed
	c.Start()
	return e
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

func (c *Clock) IsRunning() bool {
	return !c.startTime.IsZero()
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}
