// Package scanlinedecoder turns candidate regions into bar-width sequences
// and hands them to registered symbology readers. The readers own every
// bit-pattern grammar and checksum rule; this package only samples pixels.
package scanlinedecoder

import (
	"sync"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// sampleRows are the fractions of a region's height at which scan lines
// are sampled. Three lines tolerate local print damage.
var sampleRows = []float64{0.5, 0.25, 0.75}

// Decoder implements ports.Decoder with a thread-safe reader registry.
// Each pipeline worker owns its own instance; the registry lock only
// serializes reconfiguration against decode reads.
type Decoder struct {
	mu       sync.RWMutex
	registry map[string]ports.Reader
	enabled  []string
}

// New creates a decoder with the given readers registered and enabled, in
// order.
func New(readers map[string]ports.Reader) *Decoder {
	d := &Decoder{registry: make(map[string]ports.Reader)}
	for format, reader := range readers {
		d.registry[format] = reader
		d.enabled = append(d.enabled, format)
	}
	return d
}

// SetReaders replaces the enabled symbology set. Unknown formats are
// ignored; decodes already running keep the set they snapshotted.
func (d *Decoder) SetReaders(formats []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = d.enabled[:0]
	for _, format := range formats {
		if _, ok := d.registry[format]; ok {
			d.enabled = append(d.enabled, format)
		}
	}
}

// RegisterReader adds a symbology definition and enables it.
func (d *Decoder) RegisterReader(format string, reader ports.Reader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registry[format] = reader
	for _, name := range d.enabled {
		if name == format {
			return
		}
	}
	d.enabled = append(d.enabled, format)
}

// activeReaders snapshots the enabled readers for one decode pass.
func (d *Decoder) activeReaders() []ports.Reader {
	d.mu.RLock()
	defer d.mu.RUnlock()
	readers := make([]ports.Reader, 0, len(d.enabled))
	for _, format := range d.enabled {
		readers = append(readers, d.registry[format])
	}
	return readers
}

// DecodeFromBoundingBoxes scans each candidate region and returns the
// first decoded symbol, with its box and scan line attached. With no
// decodable symbol it returns a leaf carrying the candidate boxes only.
func (d *Decoder) DecodeFromBoundingBoxes(buf *scan.PixelBuffer, boxes []scan.BoundingBox) *scan.Result {
	readers := d.activeReaders()
	for i := range boxes {
		box := boxes[i]
		x0, y0, x1, y1 := clampBox(&box, buf.Size)
		if x1-x0 < 2 || y1-y0 < 1 {
			continue
		}
		for _, frac := range sampleRows {
			y := y0 + int(frac*float64(y1-y0))
			widths := barWidths(buf, x0, x1, y)
			if code := tryReaders(readers, widths); code != nil {
				return &scan.Result{
					CodeResult: code,
					Line: []scan.Point{
						{X: float64(x0), Y: float64(y)},
						{X: float64(x1), Y: float64(y)},
					},
					Box:   &box,
					Boxes: boxes,
				}
			}
		}
	}
	if len(boxes) == 0 {
		return nil
	}
	return &scan.Result{Boxes: boxes}
}

// DecodeFromImage scans the whole frame without prior locating.
func (d *Decoder) DecodeFromImage(buf *scan.PixelBuffer) *scan.Result {
	w := float64(buf.Size.Width)
	h := float64(buf.Size.Height)
	box := scan.BoundingBox{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	}
	return d.DecodeFromBoundingBoxes(buf, []scan.BoundingBox{box})
}

func tryReaders(readers []ports.Reader, widths []float64) *scan.CodeResult {
	if len(widths) == 0 {
		return nil
	}
	for _, reader := range readers {
		if code := reader.Decode(widths); code != nil {
			return code
		}
	}
	return nil
}

// clampBox returns the axis-aligned pixel extent of a box, clamped to the
// frame.
func clampBox(box *scan.BoundingBox, size scan.Size) (x0, y0, x1, y1 int) {
	minX, minY := box[0].X, box[0].Y
	maxX, maxY := minX, minY
	for _, p := range box[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	x0, y0 = max(int(minX), 0), max(int(minY), 0)
	x1, y1 = min(int(maxX), size.Width), min(int(maxY), size.Height)
	return
}

// barWidths binarizes one scan line against its mid-range luminance and
// collapses it to alternating bar/space run lengths. The sequence always
// starts with a bar; a leading space run is dropped.
func barWidths(buf *scan.PixelBuffer, x0, x1, y int) []float64 {
	if y < 0 || y >= buf.Size.Height {
		return nil
	}
	row := buf.Data[y*buf.Size.Width+x0 : y*buf.Size.Width+x1]

	lo, hi := row[0], row[0]
	for _, v := range row {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi-lo < 16 {
		// Flat line, nothing printed here.
		return nil
	}
	threshold := uint8((int(lo) + int(hi)) / 2)

	var widths []float64
	dark := row[0] < threshold
	run := 0.0
	for _, v := range row {
		if (v < threshold) == dark {
			run++
			continue
		}
		widths = append(widths, run)
		dark = !dark
		run = 1
	}
	widths = append(widths, run)
	if row[0] >= threshold && len(widths) > 0 {
		widths = widths[1:]
	}
	return widths
}

// Ensure Decoder implements ports.Decoder
var _ ports.Decoder = (*Decoder)(nil)
