// Package browsersource provides a live Source that streams frames from a
// Chrome screencast over the DevTools protocol.
package browsersource

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/image/draw"

	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// Options configures the browser capture.
type Options struct {
	Headless   bool
	ChromePath string
	Width      int // requested capture width
	Height     int // requested capture height
	Quality    int // screencast JPEG quality (0-100); 0 means 80
}

// Source implements a live ports.Source by navigating Chrome to a URL
// (typically a camera page or stream viewer) and keeping only the newest
// screencast frame. Older frames are discarded as they arrive; GrabFrame
// always sees the latest.
type Source struct {
	url  string
	opts Options

	allocCancel context.CancelFunc
	cancel      context.CancelFunc
	ctx         context.Context

	mu       sync.Mutex
	latest   *image.Gray
	ready    func(error)
	signaled bool
	released bool
}

// New creates a browser source for the given URL.
func New(url string, opts Options) *Source {
	return &Source{url: url, opts: opts}
}

// Kind reports a live source.
func (s *Source) Kind() ports.SourceKind { return ports.SourceLive }

// Play launches Chrome, starts the screencast, and navigates. The ready
// handler fires when the first frame arrives, or with the launch error.
func (s *Source) Play() error {
	chromePath := ResolveChromePath(s.opts.ChromePath)
	if chromePath == "" {
		err := fmt.Errorf("chrome not found: install Chrome/Chromium or set CHROME_PATH")
		s.signalReady(err)
		return nil
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
	}
	if s.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	if s.opts.Width > 0 && s.opts.Height > 0 {
		opts = append(opts,
			chromedp.WindowSize(s.opts.Width, s.opts.Height),
			chromedp.Flag("window-size", fmt.Sprintf("%d,%d", s.opts.Width, s.opts.Height)))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	s.allocCancel = allocCancel
	s.cancel = cancel
	s.ctx = ctx

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		frame, ok := ev.(*page.EventScreencastFrame)
		if !ok {
			return
		}
		go chromedp.Run(ctx, page.ScreencastFrameAck(frame.SessionID))
		s.storeFrame(frame.Data)
	})

	quality := s.opts.Quality
	if quality <= 0 {
		quality = 80
	}
	screencast := page.StartScreencast().
		WithFormat(page.ScreencastFormatJpeg).
		WithQuality(int64(quality))
	if s.opts.Width > 0 {
		screencast = screencast.WithMaxWidth(int64(s.opts.Width))
	}
	if s.opts.Height > 0 {
		screencast = screencast.WithMaxHeight(int64(s.opts.Height))
	}

	if err := chromedp.Run(ctx,
		chromedp.Navigate(s.url),
		screencast,
	); err != nil {
		s.signalReady(fmt.Errorf("start screencast: %w", err))
	}
	return nil
}

// storeFrame decodes a base64 JPEG screencast frame into the latest slot.
func (s *Source) storeFrame(data string) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return
	}
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)

	s.mu.Lock()
	s.latest = gray
	s.mu.Unlock()
	s.signalReady(nil)
}

func (s *Source) signalReady(err error) {
	s.mu.Lock()
	fn := s.ready
	fire := !s.signaled && fn != nil
	if fire {
		s.signaled = true
	}
	s.mu.Unlock()
	if fire {
		fn(err)
	}
}

// GrabFrame scales the newest screencast frame into dst. It fails when no
// frame has arrived since Play or the source was released.
func (s *Source) GrabFrame(dst *scan.PixelBuffer) error {
	s.mu.Lock()
	latest := s.latest
	released := s.released
	s.mu.Unlock()
	if released {
		return fmt.Errorf("source released")
	}
	if latest == nil {
		return fmt.Errorf("no frame available")
	}
	dstImg := &image.Gray{
		Pix:    dst.Data,
		Stride: dst.Size.Width,
		Rect:   image.Rect(0, 0, dst.Size.Width, dst.Size.Height),
	}
	draw.ApproxBiLinear.Scale(dstImg, dstImg.Rect, latest, latest.Bounds(), draw.Src, nil)
	return nil
}

// Size returns the capture dimensions of the newest frame.
func (s *Source) Size() (scan.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return scan.Size{}, fmt.Errorf("no frame available")
	}
	b := s.latest.Bounds()
	return scan.Size{Width: b.Dx(), Height: b.Dy()}, nil
}

// CanvasSize matches the capture dimensions.
func (s *Source) CanvasSize() scan.Size {
	size, _ := s.Size()
	return size
}

// TopRightOffset is zero: the screencast delivers the full viewport.
func (s *Source) TopRightOffset() scan.Point { return scan.Point{} }

// OnReady arms the one-time first-frame handler.
func (s *Source) OnReady(fn func(err error)) {
	s.mu.Lock()
	s.ready = fn
	s.signaled = false
	s.mu.Unlock()
}

// ClearHandlers detaches the ready handler.
func (s *Source) ClearHandlers() {
	s.mu.Lock()
	s.ready = nil
	s.mu.Unlock()
}

// Release shuts the browser down. Safe to call more than once.
func (s *Source) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.latest = nil
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// Ensure Source implements ports.Source
var _ ports.Source = (*Source)(nil)
