// Package tickerclock implements the presentation clock with a time.Ticker.
package tickerclock

import (
	"sync"
	"time"

	"github.com/user/scanline/pkg/ports"
)

// DefaultInterval approximates a 60 Hz display refresh.
const DefaultInterval = time.Second / 60

// Clock delivers wall-clock presentation timestamps at a fixed interval.
// The frame loop paces its own tick frequency against these; the interval
// here only bounds how fine that pacing can be.
type Clock struct {
	interval time.Duration
	out      chan time.Time
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a clock with the given presentation interval. A non-positive
// interval falls back to DefaultInterval.
func New(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Clock{
		interval: interval,
		out:      make(chan time.Time),
		done:     make(chan struct{}),
	}
}

// Start begins delivering timestamps. The channel closes after Stop.
func (c *Clock) Start() <-chan time.Time {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		defer close(c.out)
		for {
			select {
			case now := <-ticker.C:
				select {
				case c.out <- now:
				case <-c.done:
					return
				}
			case <-c.done:
				return
			}
		}
	}()
	return c.out
}

// Stop ends delivery. Safe to call more than once.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Ensure Clock implements ports.FrameClock
var _ ports.FrameClock = (*Clock)(nil)
