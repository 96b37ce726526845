package publish

import (
	"testing"

	"github.com/user/scanline/pkg/adapters/logger"
	"github.com/user/scanline/pkg/events"
	"github.com/user/scanline/pkg/mocks"
	"github.com/user/scanline/pkg/scan"
)

func newTestPublisher(offset scan.Point) (*Publisher, *events.Bus) {
	bus := events.NewBus()
	return New(bus, offset, scan.Size{Width: 800, Height: 600}, logger.NewNoop()), bus
}

func codedResult(code string) *scan.Result {
	return &scan.Result{
		CodeResult: &scan.CodeResult{Code: code, Format: "code_128"},
		Box: &scan.BoundingBox{
			{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 50}, {X: 10, Y: 50},
		},
	}
}

func TestPublish_ProcessedAlwaysDetectedOnCode(t *testing.T) {
	pub, bus := newTestPublisher(scan.Point{})
	processed := 0
	detected := 0
	bus.Subscribe(events.Processed, func(*scan.Result) { processed++ })
	bus.Subscribe(events.Detected, func(*scan.Result) { detected++ })

	pub.Publish(codedResult("42"), nil)
	pub.Publish(&scan.Result{Boxes: []scan.BoundingBox{{}}}, nil) // candidate, no code
	pub.Publish(nil, nil)                                         // nothing found this tick

	if processed != 3 {
		t.Errorf("processed fired %d times, want 3", processed)
	}
	if detected != 1 {
		t.Errorf("detected fired %d times, want 1", detected)
	}
}

func TestPublish_SentinelNeverDetected(t *testing.T) {
	pub, bus := newTestPublisher(scan.Point{})
	var processedResult *scan.Result
	detected := false
	bus.Subscribe(events.Processed, func(r *scan.Result) { processedResult = r })
	bus.Subscribe(events.Detected, func(*scan.Result) { detected = true })

	pub.Publish(nil, nil)

	if processedResult == nil {
		t.Fatal("processed must carry a non-nil sentinel result")
	}
	if processedResult.CodeResult != nil {
		t.Error("sentinel must not carry a code")
	}
	if detected {
		t.Error("sentinel must not fire detected")
	}
}

func TestPublish_CompositeDetectedOnAnyChild(t *testing.T) {
	pub, bus := newTestPublisher(scan.Point{})
	detected := 0
	bus.Subscribe(events.Detected, func(*scan.Result) { detected++ })

	pub.Publish(&scan.Result{Barcodes: []*scan.Result{
		{},
		codedResult("abc"),
	}}, nil)

	if detected != 1 {
		t.Errorf("detected fired %d times, want 1", detected)
	}
}

func TestPublish_AppliesOffsetExactlyOnce(t *testing.T) {
	pub, bus := newTestPublisher(scan.Point{X: 50, Y: 20})
	var got *scan.Result
	bus.Subscribe(events.Processed, func(r *scan.Result) { got = r })

	pub.Publish(codedResult("42"), nil)

	if got.Box[0] != (scan.Point{X: 60, Y: 30}) {
		t.Errorf("box[0] = %+v, want {60 30}", got.Box[0])
	}
}

func TestPublish_ForwardsEachCodedLeafToSink(t *testing.T) {
	pub, _ := newTestPublisher(scan.Point{})
	sink := &mocks.Sink{}
	pub.SetSink(sink)

	frame := scan.NewPixelBuffer(scan.Size{Width: 4, Height: 4})
	pub.Publish(&scan.Result{Barcodes: []*scan.Result{
		codedResult("one"),
		{}, // sentinel child, not forwarded
		codedResult("two"),
	}}, frame)

	calls := sink.Calls()
	if len(calls) != 2 {
		t.Fatalf("sink received %d calls, want 2", len(calls))
	}
	if calls[0].Code.Code != "one" || calls[1].Code.Code != "two" {
		t.Errorf("sink codes = %q, %q", calls[0].Code.Code, calls[1].Code.Code)
	}
	if calls[0].Image != frame {
		t.Error("sink must receive the source frame")
	}
	if calls[0].CanvasSize != (scan.Size{Width: 800, Height: 600}) {
		t.Errorf("canvas size = %+v", calls[0].CanvasSize)
	}
}

func TestPublish_SinkErrorDoesNotStopPublication(t *testing.T) {
	pub, bus := newTestPublisher(scan.Point{})
	sink := &mocks.Sink{Err: errSink}
	pub.SetSink(sink)
	processed := 0
	bus.Subscribe(events.Processed, func(*scan.Result) { processed++ })

	pub.Publish(codedResult("42"), nil)

	if processed != 1 {
		t.Error("a failing sink must not suppress publication")
	}
}

var errSink = &sinkError{}

type sinkError struct{}

func (*sinkError) Error() string { return "sink failed" }

// A worker completing after Stop publishes into a closed publisher; the
// result is discarded, not delivered.
func TestPublish_ClosedDiscards(t *testing.T) {
	pub, bus := newTestPublisher(scan.Point{})
	processed := 0
	bus.Subscribe(events.Processed, func(*scan.Result) { processed++ })

	pub.Close()
	pub.Publish(codedResult("late"), nil)

	if processed != 0 {
		t.Errorf("closed publisher delivered %d events", processed)
	}
}
