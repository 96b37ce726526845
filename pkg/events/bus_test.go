package events

import (
	"sync"
	"testing"

	"github.com/user/scanline/pkg/scan"
)

func TestBus_SubscribePublish(t *testing.T) {
	bus := NewBus()
	var got []*scan.Result
	bus.Subscribe(Processed, func(r *scan.Result) { got = append(got, r) })

	r1 := &scan.Result{}
	r2 := &scan.Result{}
	bus.Publish(Processed, r1)
	bus.Publish(Processed, r2)

	if len(got) != 2 || got[0] != r1 || got[1] != r2 {
		t.Errorf("expected both results delivered in order, got %d", len(got))
	}
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := NewBus()
	processed := 0
	detected := 0
	bus.Subscribe(Processed, func(*scan.Result) { processed++ })
	bus.Subscribe(Detected, func(*scan.Result) { detected++ })

	bus.Publish(Processed, &scan.Result{})

	if processed != 1 || detected != 0 {
		t.Errorf("processed=%d detected=%d, want 1/0", processed, detected)
	}
}

func TestBus_SubscribeOnce(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.SubscribeOnce(Detected, func(*scan.Result) { calls++ })

	bus.Publish(Detected, &scan.Result{})
	bus.Publish(Detected, &scan.Result{})

	if calls != 1 {
		t.Errorf("once subscriber fired %d times, want 1", calls)
	}
}

func TestBus_Cancel(t *testing.T) {
	bus := NewBus()
	calls := 0
	cancel := bus.Subscribe(Processed, func(*scan.Result) { calls++ })

	bus.Publish(Processed, &scan.Result{})
	cancel()
	cancel() // second cancel is harmless
	bus.Publish(Processed, &scan.Result{})

	if calls != 1 {
		t.Errorf("cancelled subscriber fired %d times, want 1", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	calls := 0
	bus.Subscribe(Processed, func(*scan.Result) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(Processed, &scan.Result{})
			}
		}()
	}
	wg.Wait()

	if calls != 400 {
		t.Errorf("expected 400 deliveries, got %d", calls)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(Processed, func(*scan.Result) { calls++ })
	bus.Clear()
	bus.Publish(Processed, &scan.Result{})

	if calls != 0 {
		t.Errorf("cleared bus still delivered %d events", calls)
	}
}
