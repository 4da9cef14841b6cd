package main

import (
	"time"

	"github.com/sweeney/egg-timer/internal/logic"
)

// tickSource is a logic.TickSource the control loop can select on.
// C returns nil while stopped, so the select case never fires.
type tickSource interface {
	logic.TickSource
	C() <-chan time.Time
}

// clockTicks delivers countdown ticks from a time.Ticker.
type clockTicks struct {
	ticker *time.Ticker
}

func (c *clockTicks) Start(interval time.Duration) {
	c.Stop()
	c.ticker = time.NewTicker(interval)
}

func (c *clockTicks) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *clockTicks) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C
}
