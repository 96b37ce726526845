// Package nullsink provides a no-op result sink implementation.
package nullsink

import (
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// Sink is a no-op implementation of ports.ResultSink. It discards all
// results.
type Sink struct{}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// AddResult does nothing.
func (s *Sink) AddResult(img *scan.PixelBuffer, canvasSize scan.Size, code *scan.CodeResult) error {
	return nil
}

// Ensure Sink implements ports.ResultSink
var _ ports.ResultSink = (*Sink)(nil)
