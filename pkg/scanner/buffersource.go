package scanner

import (
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// bufferSource wraps a caller-supplied pixel buffer for headless mode,
// skipping source acquisition entirely.
type bufferSource struct {
	buf *scan.PixelBuffer
}

func newBufferSource(buf *scan.PixelBuffer) *bufferSource {
	return &bufferSource{buf: buf}
}

func (b *bufferSource) Kind() ports.SourceKind { return ports.SourceStatic }

func (b *bufferSource) Play() error { return nil }

func (b *bufferSource) GrabFrame(dst *scan.PixelBuffer) error {
	scan.Resample(dst, b.buf)
	return nil
}

func (b *bufferSource) Size() (scan.Size, error) { return b.buf.Size, nil }

func (b *bufferSource) CanvasSize() scan.Size { return b.buf.Size }

func (b *bufferSource) TopRightOffset() scan.Point { return scan.Point{} }

func (b *bufferSource) OnReady(fn func(err error)) {
	// The buffer is grabbable immediately.
	fn(nil)
}

func (b *bufferSource) ClearHandlers() {}

func (b *bufferSource) Release() {}
