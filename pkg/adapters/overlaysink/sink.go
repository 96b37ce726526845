// Package overlaysink renders each detection over its frame and writes the
// result as a numbered PNG.
package overlaysink

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// bannerHeight is the label strip drawn under the frame.
const bannerHeight = 28

// Sink implements ports.ResultSink by drawing the decoded symbol over a
// copy of the frame it was found in.
type Sink struct {
	fs     ports.FileSystem
	dir    string
	logger ports.Logger

	mu    sync.Mutex
	index int
}

// New creates a sink writing PNGs into dir.
func New(fs ports.FileSystem, dir string, logger ports.Logger) *Sink {
	return &Sink{
		fs:     fs,
		dir:    dir,
		logger: logger.WithComponent("overlay"),
	}
}

// AddResult renders one detection. A nil image can arrive from a worker
// completing after teardown; it is skipped without error.
func (s *Sink) AddResult(img *scan.PixelBuffer, canvasSize scan.Size, code *scan.CodeResult) error {
	if img == nil || code == nil {
		return nil
	}

	s.mu.Lock()
	index := s.index
	s.index++
	s.mu.Unlock()

	w, h := img.Size.Width, img.Size.Height
	dc := gg.NewContext(w, h+bannerHeight)

	gray := &image.Gray{
		Pix:    img.Data,
		Stride: w,
		Rect:   image.Rect(0, 0, w, h),
	}
	dc.DrawImage(gray, 0, 0)

	dc.SetRGB(0.1, 0.1, 0.18)
	dc.DrawRectangle(0, float64(h), float64(w), bannerHeight)
	dc.Fill()
	dc.SetRGB(0.29, 0.87, 0.5)
	dc.DrawStringAnchored(
		fmt.Sprintf("%s  %s  (%dx%d)", code.Format, code.Code, canvasSize.Width, canvasSize.Height),
		float64(w)/2, float64(h)+bannerHeight/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("detection-%04d.png", index))
	if err := s.fs.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}
	s.logger.Debug("Overlay saved to %s", path)
	return nil
}

// Ensure Sink implements ports.ResultSink
var _ ports.ResultSink = (*Sink)(nil)
