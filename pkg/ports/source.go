// Package ports defines interfaces for the pipeline's external
// collaborators.
package ports

import (
	"github.com/user/scanline/pkg/scan"
)

// SourceKind selects the scheduling mode for a source.
type SourceKind int

const (
	// SourceStatic is a single still image; the pipeline runs exactly one
	// tick against it.
	SourceStatic SourceKind = iota
	// SourceLive is a continuous stream; the pipeline runs a repeating
	// frame loop against it.
	SourceLive
)

// Source supplies frames to the pipeline. Acquisition (camera permission,
// browser startup, file decode) happens behind Play; the ready callback
// fires once when frames become grabbable, or with an error when
// acquisition fails.
type Source interface {
	// Kind reports whether the source is live or static.
	Kind() SourceKind

	// Play begins acquisition. The ready handler registered with OnReady
	// fires when the first frame can be grabbed.
	Play() error

	// GrabFrame overwrites dst with the current frame, down-sampled to
	// dst's resolution and converted to grayscale. It fails when no frame
	// is available this instant; a failed grab is transient, not fatal.
	GrabFrame(dst *scan.PixelBuffer) error

	// Size returns the source-viewport dimensions.
	Size() (scan.Size, error)

	// CanvasSize returns the dimensions reported to result sinks.
	CanvasSize() scan.Size

	// TopRightOffset returns the source-viewport position of the
	// processing region's top-right corner, used to derive the result
	// coordinate offset.
	TopRightOffset() scan.Point

	// OnReady arms a one-time acquisition callback. Registering replaces
	// any previously armed handler.
	OnReady(fn func(err error))

	// ClearHandlers detaches every registered source handler.
	ClearHandlers()

	// Release frees the underlying capture resources. Safe to call more
	// than once.
	Release()
}
