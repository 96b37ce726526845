// Package transform maps detection results from processing-viewport space
// back to source-viewport space.
package transform

import (
	"github.com/user/scanline/pkg/scan"
)

// Apply shifts every coordinate in result by offset, in place. A zero
// offset is a no-op. Composite results are walked recursively; for each
// leaf the line endpoints, the box, and every box in boxes are shifted.
//
// Apply is not idempotent: calling it twice double-shifts. The pipeline
// calls it exactly once per produced result, before publication.
func Apply(result *scan.Result, offset scan.Point) {
	if result == nil || offset.IsZero() {
		return
	}
	result.WalkLeaves(func(leaf *scan.Result) {
		for i := range leaf.Line {
			leaf.Line[i] = leaf.Line[i].Add(offset)
		}
		if leaf.Box != nil {
			leaf.Box.Shift(offset)
		}
		for i := range leaf.Boxes {
			leaf.Boxes[i].Shift(offset)
		}
	})
}

// OffsetBetween derives the per-pipeline offset from the source viewport's
// top-right corner and the processing viewport's. It corrects for cropping
// applied when the processing region is a sub-rectangle of the captured
// frame.
func OffsetBetween(sourceTopRight, processingTopRight scan.Point) scan.Point {
	return scan.Point{
		X: sourceTopRight.X - processingTopRight.X,
		Y: sourceTopRight.Y - processingTopRight.Y,
	}
}
