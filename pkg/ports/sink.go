package ports

import (
	"github.com/user/scanline/pkg/scan"
)

// ResultSink receives every decoded symbol together with the frame it was
// found in. Sinks are optional; when none is registered, results still
// reach event subscribers.
type ResultSink interface {
	// AddResult is called once per decoded leaf. image is a snapshot of
	// the processing frame; canvasSize is the source canvas the result
	// maps onto.
	AddResult(image *scan.PixelBuffer, canvasSize scan.Size, code *scan.CodeResult) error
}
