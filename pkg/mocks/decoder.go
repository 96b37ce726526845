package mocks

import (
	"sync"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// Decoder is a configurable mock decoder. The same instance may be shared
// between a test and pool slots; counters are mutex-guarded.
type Decoder struct {
	mu sync.Mutex

	Result *scan.Result // returned by both decode operations

	BoxCalls      int
	ImageCalls    int
	SetCalls      [][]string
	Registered    map[string]ports.Reader
	DecodeStarted chan struct{} // signaled (non-blocking) at each decode, when set
	DecodeRelease chan struct{} // decode blocks on this, when set
}

// DecodeFromBoundingBoxes returns the configured result.
func (m *Decoder) DecodeFromBoundingBoxes(buf *scan.PixelBuffer, boxes []scan.BoundingBox) *scan.Result {
	m.mu.Lock()
	m.BoxCalls++
	m.mu.Unlock()
	m.block()
	return m.Result
}

// DecodeFromImage returns the configured result.
func (m *Decoder) DecodeFromImage(buf *scan.PixelBuffer) *scan.Result {
	m.mu.Lock()
	m.ImageCalls++
	m.mu.Unlock()
	m.block()
	return m.Result
}

func (m *Decoder) block() {
	if m.DecodeStarted != nil {
		select {
		case m.DecodeStarted <- struct{}{}:
		default:
		}
	}
	if m.DecodeRelease != nil {
		<-m.DecodeRelease
	}
}

// SetReaders records the call.
func (m *Decoder) SetReaders(formats []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, formats)
}

// RegisterReader records the registration.
func (m *Decoder) RegisterReader(format string, reader ports.Reader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Registered == nil {
		m.Registered = make(map[string]ports.Reader)
	}
	m.Registered[format] = reader
}

// Calls returns the total number of decode invocations.
func (m *Decoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.BoxCalls + m.ImageCalls
}

// Ensure Decoder implements ports.Decoder
var _ ports.Decoder = (*Decoder)(nil)

// Reader is a mock symbology reader returning a fixed code.
type Reader struct {
	Name string
	Code *scan.CodeResult
}

// Format returns the reader's name.
func (m *Reader) Format() string { return m.Name }

// Decode returns the fixed code.
func (m *Reader) Decode(widths []float64) *scan.CodeResult { return m.Code }

// Ensure Reader implements ports.Reader
var _ ports.Reader = (*Reader)(nil)
