// Package publish classifies decode outcomes and emits them on the event
// bus, forwarding detections to an optional result sink.
package publish

import (
	"sync"
	"sync/atomic"

	"github.com/user/scanline/pkg/events"
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
	"github.com/user/scanline/pkg/transform"
)

// Publisher applies the viewport offset to each produced result exactly
// once, forwards decoded symbols to the sink, and classifies the result
// onto the processed/detected topics. It is shared by the control loop and
// every worker slot; completions arriving after Close are discarded.
type Publisher struct {
	bus        *events.Bus
	offset     scan.Point
	canvasSize scan.Size
	logger     ports.Logger

	mu     sync.RWMutex
	sink   ports.ResultSink
	closed atomic.Bool
}

// New creates a publisher bound to a bus, with the coordinate offset and
// canvas size derived once per pipeline.
func New(bus *events.Bus, offset scan.Point, canvasSize scan.Size, logger ports.Logger) *Publisher {
	return &Publisher{
		bus:        bus,
		offset:     offset,
		canvasSize: canvasSize,
		logger:     logger.WithComponent("publish"),
	}
}

// SetSink registers the optional result sink. A nil sink unregisters.
func (p *Publisher) SetSink(sink ports.ResultSink) {
	p.mu.Lock()
	p.sink = sink
	p.mu.Unlock()
}

// Publish transforms, forwards, and classifies one tick outcome. A nil
// result is the "no code found this tick" sentinel: it becomes an empty
// leaf published on processed only. image is the frame the result was
// decoded from and may be nil for late worker completions.
func (p *Publisher) Publish(result *scan.Result, image *scan.PixelBuffer) {
	if p.closed.Load() {
		p.logger.Debug("Discarding result after close")
		return
	}

	if result == nil {
		result = &scan.Result{}
	} else {
		transform.Apply(result, p.offset)
		p.forwardToSink(result, image)
	}

	p.bus.Publish(events.Processed, result)
	if result.HasCode() {
		p.bus.Publish(events.Detected, result)
	}
}

// Close makes all further publications no-ops. Worker completions that
// race a pipeline stop land here instead of on torn-down subscribers.
func (p *Publisher) Close() {
	p.closed.Store(true)
}

func (p *Publisher) forwardToSink(result *scan.Result, image *scan.PixelBuffer) {
	p.mu.RLock()
	sink := p.sink
	p.mu.RUnlock()
	if sink == nil {
		return
	}

	result.WalkLeaves(func(leaf *scan.Result) {
		if leaf.CodeResult == nil {
			return
		}
		if err := sink.AddResult(image, p.canvasSize, leaf.CodeResult); err != nil {
			p.logger.Warn("Result sink failed: %s", err)
		}
	})
}
