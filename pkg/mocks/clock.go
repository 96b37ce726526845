package mocks

import (
	"sync"
	"time"

	"github.com/user/scanline/pkg/ports"
)

// Clock is a manually driven presentation clock. Tests push timestamps
// with Fire and end the stream with Stop.
type Clock struct {
	out      chan time.Time
	stopOnce sync.Once
}

// NewClock creates a manual clock.
func NewClock() *Clock {
	return &Clock{out: make(chan time.Time)}
}

// Start returns the timestamp channel.
func (m *Clock) Start() <-chan time.Time {
	return m.out
}

// Fire delivers one presentation timestamp, blocking until the loop
// consumes it.
func (m *Clock) Fire(t time.Time) {
	m.out <- t
}

// TryFire delivers one timestamp unless the loop already exited.
func (m *Clock) TryFire(t time.Time) bool {
	select {
	case m.out <- t:
		return true
	default:
		return false
	}
}

// Stop closes the timestamp channel.
func (m *Clock) Stop() {
	m.stopOnce.Do(func() { close(m.out) })
}

// Ensure Clock implements ports.FrameClock
var _ ports.FrameClock = (*Clock)(nil)
