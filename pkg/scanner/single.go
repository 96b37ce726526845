package scanner

import (
	"context"
	"fmt"

	"github.com/user/scanline/pkg/config"
	"github.com/user/scanline/pkg/events"
	"github.com/user/scanline/pkg/scan"
)

// DecodeSingle decodes exactly one static image and tears the pipeline
// down again. Concurrent callers are serialized: at most one one-shot
// pipeline is in flight at any time, later callers wait for the slot with
// no ordering promise among them, and every caller eventually receives a
// result or an error. ctx bounds both the wait for the slot and source
// acquisition.
//
// The caller's cfg is applied over the one-shot defaults; the source type
// and worker count are forced to the one-shot values regardless of what
// cfg says.
func (s *Scanner) DecodeSingle(ctx context.Context, cfg config.Config) (*scan.Result, error) {
	select {
	case s.singleSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.singleSem }()

	cfg.InputStream.Type = config.TypeImage
	cfg.NumOfWorkers = 0

	resultCh := make(chan *scan.Result, 1)
	cancel := s.bus.SubscribeOnce(events.Processed, func(r *scan.Result) {
		resultCh <- r
	})
	defer cancel()

	if err := s.Init(ctx, cfg, nil); err != nil {
		return nil, err
	}
	defer s.Stop()

	// Static sources tick synchronously inside Start.
	if err := s.Start(); err != nil {
		return nil, err
	}

	select {
	case result := <-resultCh:
		return result, nil
	default:
		return nil, fmt.Errorf("decode single: no frame could be grabbed")
	}
}
