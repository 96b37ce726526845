package mocks

import (
	"sync"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// SinkCall records one AddResult invocation.
type SinkCall struct {
	Image      *scan.PixelBuffer
	CanvasSize scan.Size
	Code       *scan.CodeResult
}

// Sink is a recording mock result sink.
type Sink struct {
	mu    sync.Mutex
	Err   error
	calls []SinkCall
}

// AddResult records the call and returns the configured error.
func (m *Sink) AddResult(img *scan.PixelBuffer, canvasSize scan.Size, code *scan.CodeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SinkCall{Image: img, CanvasSize: canvasSize, Code: code})
	return m.Err
}

// Calls returns a copy of the recorded calls.
func (m *Sink) Calls() []SinkCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SinkCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Ensure Sink implements ports.ResultSink
var _ ports.ResultSink = (*Sink)(nil)
