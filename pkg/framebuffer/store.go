// Package framebuffer owns the reusable processing buffer and the geometry
// derived from it.
package framebuffer

import (
	"fmt"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// patchesPerRow maps the configured patch-size hint to the number of
// candidate patches tiled across the processing frame.
var patchesPerRow = map[ports.PatchSize]int{
	ports.PatchXSmall: 32,
	ports.PatchSmall:  24,
	ports.PatchMedium: 16,
	ports.PatchLarge:  12,
	ports.PatchXLarge: 8,
}

// PatchesPerRow returns the patch-grid granularity for a patch-size hint,
// falling back to medium for unknown hints.
func PatchesPerRow(ps ports.PatchSize) int {
	if n, ok := patchesPerRow[ps]; ok {
		return n
	}
	return patchesPerRow[ports.PatchMedium]
}

// Store holds the single live pixel buffer for a pipeline plus the
// processing geometry derived from source size and locator options. The
// buffer is allocated once per Init and overwritten in place every tick;
// its identity is stable until the next Init.
type Store struct {
	buffer     *scan.PixelBuffer
	processing scan.Size
	patch      scan.Size
	defaultBox scan.BoundingBox
}

// Init computes the processing resolution from the source geometry,
// allocates the buffer, and derives the default bounding box used when
// locating is disabled. Re-initialization after a source geometry change
// replaces the buffer.
func Init(source scan.Size, opts ports.LocatorOptions) (*Store, error) {
	if source.Width <= 0 || source.Height <= 0 {
		return nil, fmt.Errorf("invalid source geometry %dx%d", source.Width, source.Height)
	}

	processing := source
	if opts.HalfSample {
		processing.Width = source.Width / 2
		processing.Height = source.Height / 2
	}

	perRow := PatchesPerRow(opts.PatchSize)
	patch := scan.Size{
		Width:  processing.Width / perRow,
		Height: processing.Height / perRow,
	}

	w := float64(processing.Width)
	h := float64(processing.Height)
	return &Store{
		buffer:     scan.NewPixelBuffer(processing),
		processing: processing,
		patch:      patch,
		defaultBox: scan.BoundingBox{
			{X: 0, Y: 0},
			{X: w, Y: 0},
			{X: w, Y: h},
			{X: 0, Y: h},
		},
	}, nil
}

// Buffer returns the live pixel buffer. Callers must not retain its pixel
// data across ticks; copy out what outlives the tick.
func (s *Store) Buffer() *scan.PixelBuffer {
	return s.buffer
}

// ProcessingSize returns the down-sampled resolution decoding runs at.
func (s *Store) ProcessingSize() scan.Size {
	return s.processing
}

// PatchSize returns the candidate-patch dimensions handed to the locator.
func (s *Store) PatchSize() scan.Size {
	return s.patch
}

// DefaultBox returns the full-frame bounding box used when locating is
// disabled.
func (s *Store) DefaultBox() scan.BoundingBox {
	return s.defaultBox
}
