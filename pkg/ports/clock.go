package ports

import (
	"time"
)

// FrameClock models the host's frame-presentation callback. The frame loop
// re-arms itself on every delivered timestamp and decides, per timestamp,
// whether a tick is due.
type FrameClock interface {
	// Start begins delivering presentation timestamps. The channel closes
	// after Stop.
	Start() <-chan time.Time

	// Stop ends delivery and releases the clock. Safe to call more than
	// once.
	Stop()
}
