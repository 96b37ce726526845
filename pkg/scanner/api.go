package scanner

import (
	"github.com/user/scanline/pkg/events"
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// OnProcessed subscribes fn to every tick outcome. The returned function
// cancels the subscription.
func (s *Scanner) OnProcessed(fn func(*scan.Result)) (cancel func()) {
	return s.bus.Subscribe(events.Processed, events.Handler(fn))
}

// OnDetected subscribes fn to outcomes carrying a decoded symbol.
func (s *Scanner) OnDetected(fn func(*scan.Result)) (cancel func()) {
	return s.bus.Subscribe(events.Detected, events.Handler(fn))
}

// OnceDetected subscribes fn to the next detection only.
func (s *Scanner) OnceDetected(fn func(*scan.Result)) (cancel func()) {
	return s.bus.SubscribeOnce(events.Detected, events.Handler(fn))
}

// RegisterResultSink attaches a sink receiving every decoded symbol with
// its frame. Takes effect immediately on a running pipeline and carries
// over to later pipelines.
func (s *Scanner) RegisterResultSink(sink ports.ResultSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
	if s.pipe != nil {
		s.pipe.publisher.SetSink(sink)
	}
}

// SetReaders replaces the enabled symbology set on every worker slot and
// the in-process fallback decoder. This is live reconfiguration: in-flight
// decodes are not disturbed.
func (s *Scanner) SetReaders(formats []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipe == nil {
		return
	}
	s.pipe.pool.SetReaders(formats)
	if s.pipe.fallback != nil {
		s.pipe.fallback.SetReaders(formats)
	}
}

// RegisterReader adds a symbology definition to every existing decoder and
// to all decoders created afterwards.
func (s *Scanner) RegisterReader(format string, reader ports.Reader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readers[format] = reader
	if s.pipe == nil {
		return
	}
	s.pipe.pool.RegisterReader(format, reader)
	if s.pipe.fallback != nil {
		s.pipe.fallback.RegisterReader(format, reader)
	}
}
