// Package scheduler drives the per-tick cadence of the frame loop.
package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/user/scanline/pkg/ports"
)

// Tick performs one grab-dispatch-publish iteration.
type Tick func()

// Loop paces ticks against a target frequency using the host's
// frame-presentation clock. A frequency of zero ticks on every
// presentation callback.
type Loop struct {
	clock     ports.FrameClock
	frequency float64
	tick      Tick
	stopped   *atomic.Bool
	logger    ports.Logger
}

// New creates a loop. The stop flag is owned by the lifecycle controller;
// the loop only observes it.
func New(clock ports.FrameClock, frequency float64, tick Tick, stopped *atomic.Bool, logger ports.Logger) *Loop {
	return &Loop{
		clock:     clock,
		frequency: frequency,
		tick:      tick,
		stopped:   stopped,
		logger:    logger.WithComponent("scheduler"),
	}
}

// Run drives continuous mode until the stop flag is observed or the clock
// closes. It keeps a target timestamp `next`; a presentation callback at or
// past `next` advances it by one fixed delay and performs one tick.
// Advancing additively, instead of resetting to now+delay, self-corrects
// toward the nominal frequency: timing error never accumulates, at the cost
// of two close ticks after a stall. Run blocks; the lifecycle controller
// starts it on its own goroutine.
func (l *Loop) Run() {
	var delay time.Duration
	if l.frequency > 0 {
		delay = time.Duration(float64(time.Second) / l.frequency)
	}

	frames := l.clock.Start()
	defer l.clock.Stop()

	var next time.Time
	for now := range frames {
		if l.stopped.Load() {
			// Stop re-arming, silently.
			return
		}
		if next.IsZero() {
			next = now
		}
		if delay > 0 && now.Before(next) {
			continue
		}
		next = next.Add(delay)
		l.tick()
	}
}

// Once performs exactly one tick with no repeating schedule. Static
// sources use this mode.
func (l *Loop) Once() {
	if l.stopped.Load() {
		return
	}
	l.tick()
}
