package mocks

import (
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// Locator is a configurable mock locator.
type Locator struct {
	ConstraintErr error
	Boxes         []scan.BoundingBox
	LocateCalls   int
}

// CheckConstraints returns the configured error.
func (m *Locator) CheckConstraints(processing scan.Size, opts ports.LocatorOptions) error {
	return m.ConstraintErr
}

// Locate returns the configured boxes.
func (m *Locator) Locate(buf *scan.PixelBuffer, patch scan.Size) []scan.BoundingBox {
	m.LocateCalls++
	return m.Boxes
}

// Ensure Locator implements ports.Locator
var _ ports.Locator = (*Locator)(nil)
