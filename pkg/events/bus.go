// Package events implements the pipeline's publish/subscribe topics.
package events

import (
	"sync"

	"github.com/user/scanline/pkg/scan"
)

// Topic identifies one event stream on the bus.
type Topic string

const (
	// Processed fires once for every tick outcome, detection or not.
	Processed Topic = "processed"
	// Detected fires only for outcomes carrying a decoded symbol.
	Detected Topic = "detected"
)

// Handler receives a published result. Results arriving from pool workers
// may be delivered out of frame-capture order.
type Handler func(*scan.Result)

// Bus is a per-pipeline subscriber registry. It is safe for concurrent use
// by the control loop and worker completions.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[Topic]map[int]*subscription
}

type subscription struct {
	fn   Handler
	once bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]*subscription)}
}

// Subscribe registers fn for every future publication on topic. The
// returned function cancels the subscription; calling it more than once is
// harmless.
func (b *Bus) Subscribe(topic Topic, fn Handler) (cancel func()) {
	return b.add(topic, fn, false)
}

// SubscribeOnce registers fn for the next publication on topic only.
func (b *Bus) SubscribeOnce(topic Topic, fn Handler) (cancel func()) {
	return b.add(topic, fn, true)
}

func (b *Bus) add(topic Topic, fn Handler, once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]*subscription)
	}
	b.subs[topic][id] = &subscription{fn: fn, once: once}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers result to every subscriber of topic. One-shot
// subscribers are removed before their handler runs, so a handler that
// re-publishes cannot fire itself again. Handlers run on the publishing
// goroutine.
func (b *Bus) Publish(topic Topic, result *scan.Result) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for id, sub := range b.subs[topic] {
		handlers = append(handlers, sub.fn)
		if sub.once {
			delete(b.subs[topic], id)
		}
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(result)
	}
}

// Clear drops every subscription on every topic.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[Topic]map[int]*subscription)
}
