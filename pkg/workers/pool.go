// Package workers implements the parallel decode pool.
package workers

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/publish"
	"github.com/user/scanline/pkg/scan"
)

// DecodeFunc runs one locate+decode pass over a frame with the given
// decoder instance. The control loop and every slot share the same routine;
// only the decoder differs.
type DecodeFunc func(decoder ports.Decoder, frame *scan.PixelBuffer) *scan.Result

// slot is one independent decode unit: an isolated decoder, a busy flag,
// and a capacity-1 frame channel. Slots are interchangeable and promise no
// ordering between each other.
type slot struct {
	decoder ports.Decoder
	frames  chan *scan.PixelBuffer
	busy    atomic.Bool
	done    chan struct{}
}

// Pool owns N decode slots. Size zero is the valid "no pool" state; the
// pipeline then decodes in-process. Completions flow straight into the
// shared publisher, unsynchronized with frame ticks.
type Pool struct {
	factory   ports.DecoderFactory
	decode    DecodeFunc
	publisher *publish.Publisher
	logger    ports.Logger

	mu    sync.Mutex // serializes Adjust; guards slots
	slots []*slot
}

// NewPool creates an empty pool. Slots are added with Adjust.
func NewPool(factory ports.DecoderFactory, decode DecodeFunc, publisher *publish.Publisher, logger ports.Logger) *Pool {
	return &Pool{
		factory:   factory,
		decode:    decode,
		publisher: publisher,
		logger:    logger.WithComponent("workers"),
	}
}

// Size returns the current number of slots.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// Adjust brings the pool to target slots, each with its own decoder built
// from the factory. Growing spawns slot goroutines; shrinking stops excess
// slots and waits for their goroutines to exit so no decode outlives the
// resize. Adjust returns once the pool is at the requested size.
func (p *Pool) Adjust(target int) error {
	if target < 0 {
		return fmt.Errorf("adjust pool: negative size %d", target)
	}
	if target > 0 && p.factory == nil {
		return fmt.Errorf("adjust pool: no decoder factory configured")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.slots) > target {
		s := p.slots[len(p.slots)-1]
		p.slots = p.slots[:len(p.slots)-1]
		close(s.frames)
		<-s.done
	}

	for len(p.slots) < target {
		s := &slot{
			decoder: p.factory(),
			frames:  make(chan *scan.PixelBuffer, 1),
			done:    make(chan struct{}),
		}
		go p.run(s)
		p.slots = append(p.slots, s)
	}

	p.logger.Debug("Pool adjusted to %d workers", target)
	return nil
}

// Dispatch hands the current frame to every idle slot and reports whether
// the tick was delegated. With a non-empty pool it returns true even when
// all slots are busy: the frame is dropped rather than queued, bounding
// memory and latency under sustained overload. With an empty pool it
// returns false and the caller must decode in-process.
func (p *Pool) Dispatch(frame *scan.PixelBuffer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.slots) == 0 {
		return false
	}

	// One immutable snapshot per tick; slots processing an older frame
	// never observe it.
	var snapshot *scan.PixelBuffer
	for _, s := range p.slots {
		if s.busy.Load() {
			continue
		}
		if snapshot == nil {
			snapshot = frame.Snapshot()
		}
		s.busy.Store(true)
		s.frames <- snapshot
	}
	if snapshot == nil {
		p.logger.Debug("All workers busy, frame dropped")
	}
	return true
}

// SetReaders propagates a symbology-enablement change to every slot's
// decoder without disturbing in-flight decodes.
func (p *Pool) SetReaders(formats []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		s.decoder.SetReaders(formats)
	}
}

// RegisterReader adds a symbology definition to every slot's decoder.
func (p *Pool) RegisterReader(format string, reader ports.Reader) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		s.decoder.RegisterReader(format, reader)
	}
}

func (p *Pool) run(s *slot) {
	defer close(s.done)
	for frame := range s.frames {
		result := p.decode(s.decoder, frame)
		p.publisher.Publish(result, frame)
		s.busy.Store(false)
	}
}
