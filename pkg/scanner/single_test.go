package scanner

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/scanline/pkg/adapters/logger"
	"github.com/user/scanline/pkg/config"
	"github.com/user/scanline/pkg/mocks"
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

func TestDecodeSingle_ReturnsDecodedResult(t *testing.T) {
	s, _ := newTestScanner(staticSource(), insideBox())

	result, err := s.DecodeSingle(context.Background(), config.SingleShotDefaults())
	if err != nil {
		t.Fatalf("DecodeSingle: %v", err)
	}
	if !result.HasCode() {
		t.Fatal("expected a decoded code")
	}
	if result.CodeResult.Code != "4006381333931" {
		t.Errorf("code = %q", result.CodeResult.Code)
	}

	s.mu.Lock()
	pipe := s.pipe
	s.mu.Unlock()
	if pipe != nil {
		t.Error("one-shot pipeline must be torn down on return")
	}
}

func TestDecodeSingle_NoFrameGrabbed(t *testing.T) {
	src := staticSource()
	src.GrabErr = errConstraint
	s, _ := newTestScanner(src, nil)

	_, err := s.DecodeSingle(context.Background(), config.SingleShotDefaults())
	if err == nil {
		t.Fatal("expected error when no frame can be grabbed")
	}
	if !strings.Contains(err.Error(), "no frame") {
		t.Errorf("err = %v", err)
	}
}

func TestDecodeSingle_ForcesStaticModeWithoutWorkers(t *testing.T) {
	var seen config.Config
	src := staticSource()
	var created int32
	s := New(Deps{
		NewSource: func(cfg config.Config) (ports.Source, error) {
			seen = cfg
			return src, nil
		},
		Locator: &mocks.Locator{},
		NewDecoder: func() ports.Decoder {
			atomic.AddInt32(&created, 1)
			return &mocks.Decoder{Result: insideBox()}
		},
		NewClock: func() ports.FrameClock { return mocks.NewClock() },
		Logger:   logger.NewNoop(),
	})

	cfg := config.Defaults()
	cfg.InputStream.Type = config.TypeLive
	cfg.NumOfWorkers = 5
	cfg.Locate = false
	if _, err := s.DecodeSingle(context.Background(), cfg); err != nil {
		t.Fatalf("DecodeSingle: %v", err)
	}

	if seen.InputStream.Type != config.TypeImage {
		t.Errorf("source type = %q, want forced %q", seen.InputStream.Type, config.TypeImage)
	}
	if seen.NumOfWorkers != 0 {
		t.Errorf("workers = %d, want forced 0", seen.NumOfWorkers)
	}
	if atomic.LoadInt32(&created) != 1 {
		t.Errorf("decoder instances = %d, want 1 (fallback only)", created)
	}
}

// Two concurrent one-shot calls share the single in-flight slot: while the
// first decode blocks, the second has not started; once released, both
// callers get a result.
func TestDecodeSingle_SerializesConcurrentCallers(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	decoder := &mocks.Decoder{
		Result:        insideBox(),
		DecodeStarted: started,
		DecodeRelease: release,
	}
	s := New(Deps{
		NewSource: func(cfg config.Config) (ports.Source, error) { return staticSource(), nil },
		Locator: &mocks.Locator{Boxes: []scan.BoundingBox{
			{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		}},
		NewDecoder: func() ports.Decoder { return decoder },
		NewClock:   func() ports.FrameClock { return mocks.NewClock() },
		Logger:     logger.NewNoop(),
	})

	type outcome struct {
		result *scan.Result
		err    error
	}
	results := make(chan outcome, 2)
	for i := 0; i < 2; i++ {
		go func() {
			r, err := s.DecodeSingle(context.Background(), config.SingleShotDefaults())
			results <- outcome{r, err}
		}()
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first decode never started")
	}
	// First caller holds the slot mid-decode; the second has not reached
	// its decoder yet.
	if got := decoder.Calls(); got != 1 {
		t.Fatalf("decodes in flight = %d, want 1", got)
	}

	close(release)
	for i := 0; i < 2; i++ {
		select {
		case out := <-results:
			if out.err != nil {
				t.Errorf("caller %d: %v", i, out.err)
			} else if !out.result.HasCode() {
				t.Errorf("caller %d: no code", i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("caller %d never finished", i)
		}
	}
	if got := decoder.Calls(); got != 2 {
		t.Errorf("total decodes = %d, want 2", got)
	}
}

func TestDecodeSingle_ContextBoundsSlotWait(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	decoder := &mocks.Decoder{
		Result:        insideBox(),
		DecodeStarted: started,
		DecodeRelease: release,
	}
	s := New(Deps{
		NewSource:  func(cfg config.Config) (ports.Source, error) { return staticSource(), nil },
		Locator:    &mocks.Locator{Boxes: []scan.BoundingBox{{}}},
		NewDecoder: func() ports.Decoder { return decoder },
		NewClock:   func() ports.FrameClock { return mocks.NewClock() },
		Logger:     logger.NewNoop(),
	})

	first := make(chan error, 1)
	go func() {
		_, err := s.DecodeSingle(context.Background(), config.SingleShotDefaults())
		first <- err
	}()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first decode never started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.DecodeSingle(ctx, config.SingleShotDefaults()); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-first; err != nil {
		t.Errorf("first caller: %v", err)
	}
}

func TestDecodeSingle_FailureReleasesSlot(t *testing.T) {
	var calls int32
	src := staticSource()
	s := New(Deps{
		NewSource: func(cfg config.Config) (ports.Source, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, errConstraint
			}
			return src, nil
		},
		Locator:    &mocks.Locator{},
		NewDecoder: func() ports.Decoder { return &mocks.Decoder{Result: insideBox()} },
		NewClock:   func() ports.FrameClock { return mocks.NewClock() },
		Logger:     logger.NewNoop(),
	})

	cfg := config.SingleShotDefaults()
	cfg.Locate = false
	if _, err := s.DecodeSingle(context.Background(), cfg); err == nil {
		t.Fatal("expected source failure")
	}
	if _, err := s.DecodeSingle(context.Background(), cfg); err != nil {
		t.Errorf("slot not released after failure: %v", err)
	}
}
