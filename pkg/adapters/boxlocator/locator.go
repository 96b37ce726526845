// Package boxlocator provides a contrast-grid locator. It validates the
// configured patch size against the processing resolution and nominates
// the high-contrast region of each frame as a single candidate box.
package boxlocator

import (
	"fmt"

	"github.com/user/scanline/pkg/framebuffer"
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// minPatchEdge is the smallest patch edge, in pixels, the decoder can
// sample a meaningful scan line from.
const minPatchEdge = 8

// contrastFloor is the minimum luminance spread for a patch to count as a
// barcode candidate.
const contrastFloor = 48

// Locator implements ports.Locator. It is stateless and safe for shared
// use by the control loop and workers.
type Locator struct{}

// New creates a Locator.
func New() *Locator {
	return &Locator{}
}

// CheckConstraints verifies the processing resolution leaves each patch at
// least minPatchEdge pixels on a side for the configured patch size.
func (l *Locator) CheckConstraints(processing scan.Size, opts ports.LocatorOptions) error {
	if !opts.Enabled {
		return nil
	}
	perRow := framebuffer.PatchesPerRow(opts.PatchSize)
	if processing.Width/perRow < minPatchEdge || processing.Height/perRow < minPatchEdge {
		return fmt.Errorf("resolution %dx%d too small for patch size %q: need at least %dx%d",
			processing.Width, processing.Height, opts.PatchSize,
			perRow*minPatchEdge, perRow*minPatchEdge)
	}
	return nil
}

// Locate tiles the frame with patches and returns the bounding box of the
// contiguous high-contrast area, or nothing when the frame is flat.
func (l *Locator) Locate(buf *scan.PixelBuffer, patch scan.Size) []scan.BoundingBox {
	if patch.Width <= 0 || patch.Height <= 0 {
		return nil
	}
	cols := buf.Size.Width / patch.Width
	rows := buf.Size.Height / patch.Height
	if cols == 0 || rows == 0 {
		return nil
	}

	minCol, minRow := cols, rows
	maxCol, maxRow := -1, -1
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if !l.busyPatch(buf, col*patch.Width, row*patch.Height, patch) {
				continue
			}
			if col < minCol {
				minCol = col
			}
			if col > maxCol {
				maxCol = col
			}
			if row < minRow {
				minRow = row
			}
			if row > maxRow {
				maxRow = row
			}
		}
	}
	if maxCol < 0 {
		return nil
	}

	x0 := float64(minCol * patch.Width)
	y0 := float64(minRow * patch.Height)
	x1 := float64((maxCol + 1) * patch.Width)
	y1 := float64((maxRow + 1) * patch.Height)
	return []scan.BoundingBox{{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}}
}

// busyPatch reports whether the patch at (px, py) has enough luminance
// spread to hold printed bars.
func (l *Locator) busyPatch(buf *scan.PixelBuffer, px, py int, patch scan.Size) bool {
	lo, hi := uint8(255), uint8(0)
	for y := py; y < py+patch.Height; y++ {
		rowStart := y*buf.Size.Width + px
		for _, v := range buf.Data[rowStart : rowStart+patch.Width] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi-lo >= contrastFloor {
			return true
		}
	}
	return hi-lo >= contrastFloor
}

// Ensure Locator implements ports.Locator
var _ ports.Locator = (*Locator)(nil)
