// Package mocks provides hand-rolled test doubles for the port interfaces.
package mocks

import (
	"sync"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// Source is a configurable mock frame source.
type Source struct {
	mu sync.Mutex

	SourceKind ports.SourceKind
	Frame      *scan.PixelBuffer // copied into dst on each grab
	GrabErr    error             // returned by GrabFrame when set
	PlayErr    error
	ReadyErr   error // delivered to the ready handler
	SizeValue  scan.Size
	Canvas     scan.Size
	Offset     scan.Point

	GrabCalls     int
	PlayCalls     int
	ReleaseCalls  int
	ClearedCalls  int
	readyHandler  func(error)
	ReadyManually bool // when true, Play does not fire the ready handler
}

// Kind returns the configured source kind.
func (m *Source) Kind() ports.SourceKind { return m.SourceKind }

// Play fires the ready handler unless ReadyManually is set.
func (m *Source) Play() error {
	m.mu.Lock()
	m.PlayCalls++
	fn := m.readyHandler
	m.mu.Unlock()
	if m.PlayErr != nil {
		return m.PlayErr
	}
	if !m.ReadyManually && fn != nil {
		fn(m.ReadyErr)
	}
	return nil
}

// FireReady delivers the ready signal manually.
func (m *Source) FireReady(err error) {
	m.mu.Lock()
	fn := m.readyHandler
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// GrabFrame copies the configured frame into dst.
func (m *Source) GrabFrame(dst *scan.PixelBuffer) error {
	m.mu.Lock()
	m.GrabCalls++
	m.mu.Unlock()
	if m.GrabErr != nil {
		return m.GrabErr
	}
	if m.Frame != nil {
		scan.Resample(dst, m.Frame)
	}
	return nil
}

// Size returns the configured source size.
func (m *Source) Size() (scan.Size, error) { return m.SizeValue, nil }

// CanvasSize returns the configured canvas size.
func (m *Source) CanvasSize() scan.Size { return m.Canvas }

// TopRightOffset returns the configured offset.
func (m *Source) TopRightOffset() scan.Point { return m.Offset }

// OnReady stores the ready handler.
func (m *Source) OnReady(fn func(err error)) {
	m.mu.Lock()
	m.readyHandler = fn
	m.mu.Unlock()
}

// ClearHandlers counts handler detachments.
func (m *Source) ClearHandlers() {
	m.mu.Lock()
	m.readyHandler = nil
	m.ClearedCalls++
	m.mu.Unlock()
}

// Release counts releases.
func (m *Source) Release() {
	m.mu.Lock()
	m.ReleaseCalls++
	m.mu.Unlock()
}

// Ensure Source implements ports.Source
var _ ports.Source = (*Source)(nil)
