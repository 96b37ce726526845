// Package imagesource provides a static Source backed by an image file.
package imagesource

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// Source decodes one image file and serves it as a single grabbable frame.
type Source struct {
	fs      ports.FileSystem
	path    string
	maxEdge int // longest-edge cap; 0 keeps native size

	gray     *image.Gray
	ready    func(error)
	released bool
}

// New creates a static source for the file at path. maxEdge, when
// positive, scales the decoded image down so its longest edge does not
// exceed it.
func New(fs ports.FileSystem, path string, maxEdge int) *Source {
	return &Source{fs: fs, path: path, maxEdge: maxEdge}
}

// Kind reports a static source.
func (s *Source) Kind() ports.SourceKind { return ports.SourceStatic }

// Play reads and decodes the image, then fires the ready handler. Decode
// failures reach the handler as acquisition errors.
func (s *Source) Play() error {
	err := s.load()
	if s.ready != nil {
		s.ready(err)
	}
	return nil
}

func (s *Source) load() error {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if s.maxEdge > 0 && (w > s.maxEdge || h > s.maxEdge) {
		if w >= h {
			h = h * s.maxEdge / w
			w = s.maxEdge
		} else {
			w = w * s.maxEdge / h
			h = s.maxEdge
		}
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, bounds, draw.Src, nil)
	s.gray = gray
	return nil
}

// GrabFrame scales the decoded image into dst.
func (s *Source) GrabFrame(dst *scan.PixelBuffer) error {
	if s.released {
		return fmt.Errorf("source released")
	}
	if s.gray == nil {
		return fmt.Errorf("source not played")
	}
	dstImg := &image.Gray{
		Pix:    dst.Data,
		Stride: dst.Size.Width,
		Rect:   image.Rect(0, 0, dst.Size.Width, dst.Size.Height),
	}
	draw.ApproxBiLinear.Scale(dstImg, dstImg.Rect, s.gray, s.gray.Bounds(), draw.Src, nil)
	return nil
}

// Size returns the decoded image dimensions.
func (s *Source) Size() (scan.Size, error) {
	if s.gray == nil {
		return scan.Size{}, fmt.Errorf("source not played")
	}
	b := s.gray.Bounds()
	return scan.Size{Width: b.Dx(), Height: b.Dy()}, nil
}

// CanvasSize matches the decoded image dimensions.
func (s *Source) CanvasSize() scan.Size {
	size, _ := s.Size()
	return size
}

// TopRightOffset is zero: static images are never cropped.
func (s *Source) TopRightOffset() scan.Point { return scan.Point{} }

// OnReady arms the acquisition handler fired by Play.
func (s *Source) OnReady(fn func(err error)) { s.ready = fn }

// ClearHandlers drops the ready handler.
func (s *Source) ClearHandlers() { s.ready = nil }

// Release frees the decoded image.
func (s *Source) Release() {
	s.released = true
	s.gray = nil
}

// Ensure Source implements ports.Source
var _ ports.Source = (*Source)(nil)
