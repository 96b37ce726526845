// Package scanner binds the frame loop, worker pool, and publisher into a
// controllable detection pipeline.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ideamans/go-l10n"
	"github.com/user/scanline/pkg/config"
	"github.com/user/scanline/pkg/events"
	"github.com/user/scanline/pkg/framebuffer"
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/publish"
	"github.com/user/scanline/pkg/scan"
	"github.com/user/scanline/pkg/scheduler"
	"github.com/user/scanline/pkg/workers"
)

// Deps are the external collaborators a Scanner is assembled from.
type Deps struct {
	// NewSource builds a frame source for the merged configuration. Not
	// consulted when Init receives a preset buffer.
	NewSource func(cfg config.Config) (ports.Source, error)

	// Locator finds candidate regions. Shared read-only by the control
	// loop and workers.
	Locator ports.Locator

	// NewDecoder builds one isolated decoder instance per worker slot and
	// for the in-process fallback.
	NewDecoder ports.DecoderFactory

	// NewClock builds the presentation clock driving continuous mode.
	NewClock func() ports.FrameClock

	Logger ports.Logger
}

// pipeline is the mutable state of one init-to-stop lifecycle, owned by the
// Scanner and passed by reference to the loop, pool, and publisher.
type pipeline struct {
	cfg       config.Config
	source    ports.Source
	store     *framebuffer.Store
	publisher *publish.Publisher
	pool      *workers.Pool
	fallback  ports.Decoder
	clock     ports.FrameClock
	stopped   atomic.Bool
	running   bool
	live      bool
}

// Scanner is the exposed lifecycle surface: Init, Start, Stop, Pause,
// DecodeSingle, reader reconfiguration, and event subscription. Event
// subscriptions live on the Scanner and survive pipeline restarts.
type Scanner struct {
	deps   Deps
	bus    *events.Bus
	logger ports.Logger

	mu      sync.Mutex // guards pipe, sink, extraReaders
	pipe    *pipeline
	sink    ports.ResultSink
	readers map[string]ports.Reader // registered after construction, applied to new decoders

	singleSem chan struct{} // capacity 1; holds the one-shot reentrancy slot
}

// New creates a Scanner. The pipeline itself is built by Init.
func New(deps Deps) *Scanner {
	return &Scanner{
		deps:      deps,
		bus:       events.NewBus(),
		logger:    deps.Logger.WithComponent("scanner"),
		readers:   make(map[string]ports.Reader),
		singleSem: make(chan struct{}, 1),
	}
}

// Init merges and validates cfg, acquires the source (or adopts the preset
// buffer in headless mode), sizes the worker pool, and initializes the
// frame buffer. It blocks until the source is ready or ctx is done. A
// scanner holds at most one pipeline; Stop the current one before
// re-initializing.
func (s *Scanner) Init(ctx context.Context, cfg config.Config, preset *scan.PixelBuffer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipe != nil {
		return fmt.Errorf("init: pipeline already initialized, stop it first")
	}

	source, err := s.acquireSource(ctx, cfg, preset)
	if err != nil {
		return err
	}

	sourceSize, err := source.Size()
	if err != nil {
		source.Release()
		return fmt.Errorf("init source geometry: %w", err)
	}

	opts := cfg.LocatorOptions()
	store, err := framebuffer.Init(sourceSize, opts)
	if err != nil {
		source.Release()
		return fmt.Errorf("init frame buffer: %w", err)
	}
	if err := s.deps.Locator.CheckConstraints(store.ProcessingSize(), opts); err != nil {
		source.Release()
		return fmt.Errorf("check constraints: %w", err)
	}

	publisher := publish.New(s.bus, source.TopRightOffset(), source.CanvasSize(), s.deps.Logger)
	publisher.SetSink(s.sink)

	p := &pipeline{
		cfg:       cfg,
		source:    source,
		store:     store,
		publisher: publisher,
		live:      source.Kind() == ports.SourceLive,
	}

	factory := s.decoderFactory(cfg)
	p.pool = workers.NewPool(factory, func(dec ports.Decoder, frame *scan.PixelBuffer) *scan.Result {
		return s.decodeFrame(p, dec, frame)
	}, publisher, s.deps.Logger)
	if err := p.pool.Adjust(cfg.NumOfWorkers); err != nil {
		source.Release()
		return fmt.Errorf("adjust pool: %w", err)
	}
	if cfg.NumOfWorkers == 0 {
		p.fallback = factory()
	}

	s.pipe = p
	s.logger.Info(l10n.F("Pipeline initialized: %dx%d processing, %d workers",
		store.ProcessingSize().Width, store.ProcessingSize().Height, cfg.NumOfWorkers))
	return nil
}

// Start begins the frame loop in the mode implied by the source type:
// a repeating drift-corrected loop for live sources, exactly one tick for
// static ones. Starting an already running pipeline is a no-op.
func (s *Scanner) Start() error {
	s.mu.Lock()
	p := s.pipe
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("start: pipeline not initialized")
	}
	if p.running {
		s.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopped.Store(false)

	if !p.live {
		loop := scheduler.New(nil, 0, func() { s.tick(p) }, &p.stopped, s.deps.Logger)
		s.mu.Unlock()
		loop.Once()
		s.mu.Lock()
		p.running = false
		s.mu.Unlock()
		return nil
	}

	p.clock = s.deps.NewClock()
	loop := scheduler.New(p.clock, p.cfg.Frequency, func() { s.tick(p) }, &p.stopped, s.deps.Logger)
	s.mu.Unlock()

	s.logger.Info(l10n.F("Frame loop started at %g Hz", p.cfg.Frequency))
	go func() {
		loop.Run()
		s.mu.Lock()
		p.running = false
		s.mu.Unlock()
	}()
	return nil
}

// Stop tears the pipeline down: no further ticks, pool shrunk to zero,
// and, for a live source, the capture device released and its handlers
// detached. Results still in flight on workers are discarded by the
// closed publisher. Stop is idempotent and never fails.
func (s *Scanner) Stop() {
	s.mu.Lock()
	p := s.pipe
	s.pipe = nil
	s.mu.Unlock()
	if p == nil {
		return
	}

	p.stopped.Store(true)
	p.publisher.Close()
	if p.clock != nil {
		p.clock.Stop()
	}
	// Dispatched decodes finish before Adjust returns; their results land
	// on the closed publisher.
	p.pool.Adjust(0)
	if p.live {
		p.source.ClearHandlers()
		p.source.Release()
	}
	s.logger.Info(l10n.T("Pipeline stopped"))
}

// Pause halts ticking but keeps the source and pool warm, making resume
// via Start cheaper than Stop+Init+Start.
func (s *Scanner) Pause() {
	s.mu.Lock()
	p := s.pipe
	s.mu.Unlock()
	if p == nil {
		return
	}
	p.stopped.Store(true)
	if p.clock != nil {
		p.clock.Stop()
	}
	s.logger.Debug("Pipeline paused")
}

// tick runs one grab-dispatch-publish iteration. A failed grab skips the
// tick without surfacing an error; one bad frame must never stop the loop.
func (s *Scanner) tick(p *pipeline) {
	buf := p.store.Buffer()
	if err := p.source.GrabFrame(buf); err != nil {
		s.logger.Debug("Frame grab failed, tick skipped: %s", err)
		return
	}
	if p.pool.Dispatch(buf) {
		return
	}
	result := s.decodeFrame(p, p.fallback, buf)
	p.publisher.Publish(result, buf)
}

// decodeFrame is the locate+decode routine shared by the in-process
// fallback and every worker slot.
func (s *Scanner) decodeFrame(p *pipeline, dec ports.Decoder, frame *scan.PixelBuffer) *scan.Result {
	if dec == nil {
		return nil
	}
	if !p.cfg.Locate {
		return dec.DecodeFromImage(frame)
	}
	boxes := s.deps.Locator.Locate(frame, p.store.PatchSize())
	if len(boxes) == 0 {
		return nil
	}
	return dec.DecodeFromBoundingBoxes(frame, boxes)
}

// acquireSource negotiates source acquisition, or wraps the preset buffer
// when the caller already owns pixel data.
func (s *Scanner) acquireSource(ctx context.Context, cfg config.Config, preset *scan.PixelBuffer) (ports.Source, error) {
	if preset != nil {
		return newBufferSource(preset), nil
	}
	if s.deps.NewSource == nil {
		return nil, fmt.Errorf("init: no source factory configured")
	}

	source, err := s.deps.NewSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("init source: %w", err)
	}

	ready := make(chan error, 1)
	source.OnReady(func(err error) { ready <- err })
	if err := source.Play(); err != nil {
		source.Release()
		return nil, fmt.Errorf("init source: %w", err)
	}
	select {
	case err := <-ready:
		if err != nil {
			source.Release()
			return nil, fmt.Errorf("init source: %w", err)
		}
	case <-ctx.Done():
		source.ClearHandlers()
		source.Release()
		return nil, ctx.Err()
	}
	return source, nil
}

// decoderFactory wraps the injected factory so configured and
// later-registered readers apply to every new decoder instance.
func (s *Scanner) decoderFactory(cfg config.Config) ports.DecoderFactory {
	if s.deps.NewDecoder == nil {
		return nil
	}
	return func() ports.Decoder {
		dec := s.deps.NewDecoder()
		for format, reader := range s.readers {
			dec.RegisterReader(format, reader)
		}
		if len(cfg.Decoder.Readers) > 0 {
			dec.SetReaders(cfg.Decoder.Readers)
		}
		return dec
	}
}
