// Package scan defines the shared data model for the detection pipeline.
package scan

// Point is a 2-D coordinate in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the point shifted by the given offset.
func (p Point) Add(offset Point) Point {
	return Point{X: p.X + offset.X, Y: p.Y + offset.Y}
}

// IsZero reports whether the point is the zero vector.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BoundingBox is an ordered sequence of four corner points describing a
// candidate barcode region in processing-viewport coordinates.
type BoundingBox [4]Point

// Shift moves every corner of the box by the given offset.
func (b *BoundingBox) Shift(offset Point) {
	for i := range b {
		b[i] = b[i].Add(offset)
	}
}

// CodeResult is a successfully decoded symbol: the text it carries and the
// symbology that produced it.
type CodeResult struct {
	Code   string `json:"code"`
	Format string `json:"format"`
}

// Result is the outcome of one decode attempt. A result is either a
// composite carrying child results in Barcodes, or a leaf. A leaf with a
// nil CodeResult means "no code found" and is a valid, non-error outcome.
type Result struct {
	CodeResult *CodeResult   `json:"codeResult,omitempty"`
	Line       []Point       `json:"line,omitempty"` // exactly 2 points when set
	Box        *BoundingBox  `json:"box,omitempty"`
	Boxes      []BoundingBox `json:"boxes,omitempty"`
	Barcodes   []*Result     `json:"barcodes,omitempty"`
}

// IsComposite reports whether the result carries child results.
func (r *Result) IsComposite() bool {
	return r != nil && len(r.Barcodes) > 0
}

// HasCode reports whether the result, or any descendant of a composite,
// carries a decoded symbol.
func (r *Result) HasCode() bool {
	if r == nil {
		return false
	}
	if r.IsComposite() {
		for _, child := range r.Barcodes {
			if child.HasCode() {
				return true
			}
		}
		return false
	}
	return r.CodeResult != nil
}

// WalkLeaves calls fn for every leaf result, recursing through composites
// in order.
func (r *Result) WalkLeaves(fn func(*Result)) {
	if r == nil {
		return
	}
	if r.IsComposite() {
		for _, child := range r.Barcodes {
			child.WalkLeaves(fn)
		}
		return
	}
	fn(r)
}
