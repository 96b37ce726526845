package ports

import (
	"github.com/user/scanline/pkg/scan"
)

// PatchSize names the locator's candidate-patch granularity.
type PatchSize string

const (
	PatchXSmall PatchSize = "x-small"
	PatchSmall  PatchSize = "small"
	PatchMedium PatchSize = "medium"
	PatchLarge  PatchSize = "large"
	PatchXLarge PatchSize = "x-large"
)

// LocatorOptions configures candidate location.
type LocatorOptions struct {
	// Enabled turns locating on. When off, decoding runs against the
	// default box covering the whole processing frame.
	Enabled bool
	// HalfSample halves the processing resolution relative to the source.
	HalfSample bool
	// PatchSize hints the expected barcode scale within the frame.
	PatchSize PatchSize
}

// Locator finds candidate barcode regions in a grayscale frame. The
// geometric algorithm is a collaborator; the pipeline only consumes its
// boxes.
type Locator interface {
	// CheckConstraints verifies the processing resolution can support the
	// configured patch size. It runs once during pipeline setup and fails
	// setup when the source is too small.
	CheckConstraints(processing scan.Size, opts LocatorOptions) error

	// Locate returns candidate regions in the buffer, or an empty slice
	// when no candidate stands out this frame.
	Locate(buf *scan.PixelBuffer, patch scan.Size) []scan.BoundingBox
}
