package scanlinedecoder

import (
	"testing"

	"github.com/user/scanline/pkg/mocks"
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
)

// recordingReader captures the width sequences it is offered.
type recordingReader struct {
	name  string
	code  *scan.CodeResult
	calls [][]float64
}

func (r *recordingReader) Format() string { return r.name }

func (r *recordingReader) Decode(widths []float64) *scan.CodeResult {
	r.calls = append(r.calls, widths)
	return r.code
}

// barcodeFrame returns a white frame with dark vertical bars of widths
// 3, 2 space, 1, 1 space, 2 starting at x=10, drawn across every row.
func barcodeFrame() *scan.PixelBuffer {
	buf := scan.NewPixelBuffer(scan.Size{Width: 60, Height: 20})
	for i := range buf.Data {
		buf.Data[i] = 255
	}
	bars := []int{10, 11, 12, 15, 17, 18}
	for y := 0; y < buf.Size.Height; y++ {
		for _, x := range bars {
			buf.Data[y*buf.Size.Width+x] = 0
		}
	}
	return buf
}

func flatFrame() *scan.PixelBuffer {
	buf := scan.NewPixelBuffer(scan.Size{Width: 60, Height: 20})
	for i := range buf.Data {
		buf.Data[i] = 128
	}
	return buf
}

func fullBox(size scan.Size) scan.BoundingBox {
	w, h := float64(size.Width), float64(size.Height)
	return scan.BoundingBox{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

func TestDecodeFromBoundingBoxes_DecodesBarSequence(t *testing.T) {
	reader := &recordingReader{
		name: "ean_13",
		code: &scan.CodeResult{Code: "4006381333931", Format: "ean_13"},
	}
	dec := New(map[string]ports.Reader{"ean_13": reader})

	buf := barcodeFrame()
	box := fullBox(buf.Size)
	result := dec.DecodeFromBoundingBoxes(buf, []scan.BoundingBox{box})

	if result == nil || !result.HasCode() {
		t.Fatalf("result = %+v, want decoded code", result)
	}
	if result.CodeResult.Code != "4006381333931" {
		t.Errorf("code = %q", result.CodeResult.Code)
	}
	if result.Box == nil || *result.Box != box {
		t.Errorf("box = %+v, want the candidate box", result.Box)
	}
	if len(result.Line) != 2 {
		t.Fatalf("line = %+v, want two endpoints", result.Line)
	}
	if result.Line[0].Y != result.Line[1].Y {
		t.Error("scan line must be horizontal")
	}

	if len(reader.calls) == 0 {
		t.Fatal("reader never consulted")
	}
	widths := reader.calls[0]
	want := []float64{3, 2, 1, 1, 2}
	if len(widths) < len(want) {
		t.Fatalf("widths = %v", widths)
	}
	for i, w := range want {
		if widths[i] != w {
			t.Errorf("widths[%d] = %g, want %g (full: %v)", i, widths[i], w, widths)
		}
	}
}

func TestDecodeFromBoundingBoxes_FlatRegionSkipsReaders(t *testing.T) {
	reader := &recordingReader{name: "ean_13", code: &scan.CodeResult{Code: "x"}}
	dec := New(map[string]ports.Reader{"ean_13": reader})

	buf := flatFrame()
	boxes := []scan.BoundingBox{fullBox(buf.Size)}
	result := dec.DecodeFromBoundingBoxes(buf, boxes)

	if len(reader.calls) != 0 {
		t.Errorf("reader consulted %d times on a flat region", len(reader.calls))
	}
	if result == nil || result.HasCode() {
		t.Fatalf("result = %+v, want candidate-only leaf", result)
	}
	if len(result.Boxes) != 1 {
		t.Errorf("boxes = %+v", result.Boxes)
	}
}

func TestDecodeFromBoundingBoxes_NoBoxes(t *testing.T) {
	dec := New(nil)
	if result := dec.DecodeFromBoundingBoxes(flatFrame(), nil); result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
}

func TestDecodeFromBoundingBoxes_ClampsOversizedBox(t *testing.T) {
	reader := &recordingReader{name: "any", code: &scan.CodeResult{Code: "ok", Format: "any"}}
	dec := New(map[string]ports.Reader{"any": reader})

	buf := barcodeFrame()
	box := scan.BoundingBox{
		{X: -50, Y: -50}, {X: 500, Y: -50}, {X: 500, Y: 500}, {X: -50, Y: 500},
	}
	result := dec.DecodeFromBoundingBoxes(buf, []scan.BoundingBox{box})
	if result == nil || !result.HasCode() {
		t.Fatalf("result = %+v, want decode within clamped extent", result)
	}
}

func TestDecodeFromImage_ScansWholeFrame(t *testing.T) {
	reader := &recordingReader{name: "any", code: &scan.CodeResult{Code: "ok", Format: "any"}}
	dec := New(map[string]ports.Reader{"any": reader})

	result := dec.DecodeFromImage(barcodeFrame())
	if result == nil || !result.HasCode() {
		t.Fatalf("result = %+v, want decoded code", result)
	}
}

func TestReaders_FirstMatchWins(t *testing.T) {
	miss := &recordingReader{name: "code_39"} // decodes to nil
	hit := &recordingReader{name: "ean_13", code: &scan.CodeResult{Code: "hit", Format: "ean_13"}}
	dec := New(nil)
	dec.RegisterReader("code_39", miss)
	dec.RegisterReader("ean_13", hit)

	result := dec.DecodeFromImage(barcodeFrame())
	if result == nil || !result.HasCode() || result.CodeResult.Code != "hit" {
		t.Fatalf("result = %+v", result)
	}
	if len(miss.calls) == 0 {
		t.Error("earlier reader must be tried first")
	}
}

func TestSetReaders_DisablesAndIgnoresUnknown(t *testing.T) {
	reader := &recordingReader{name: "ean_13", code: &scan.CodeResult{Code: "x", Format: "ean_13"}}
	dec := New(map[string]ports.Reader{"ean_13": reader})

	dec.SetReaders([]string{"bogus"})
	result := dec.DecodeFromImage(barcodeFrame())
	if result.HasCode() {
		t.Error("disabled reader still decoded")
	}

	dec.SetReaders([]string{"ean_13"})
	result = dec.DecodeFromImage(barcodeFrame())
	if !result.HasCode() {
		t.Error("re-enabled reader did not decode")
	}
}

func TestRegisterReader_EnablesImmediately(t *testing.T) {
	dec := New(nil)
	dec.RegisterReader("custom", &mocks.Reader{
		Name: "custom",
		Code: &scan.CodeResult{Code: "c", Format: "custom"},
	})

	result := dec.DecodeFromImage(barcodeFrame())
	if result == nil || !result.HasCode() {
		t.Fatalf("result = %+v, want decode via registered reader", result)
	}
}
