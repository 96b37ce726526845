package scan

import (
	"testing"
)

func TestResult_HasCode(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   bool
	}{
		{
			name:   "nil result",
			result: nil,
			want:   false,
		},
		{
			name:   "leaf without code is the sentinel",
			result: &Result{},
			want:   false,
		},
		{
			name:   "leaf with code",
			result: &Result{CodeResult: &CodeResult{Code: "4006381333931", Format: "ean_13"}},
			want:   true,
		},
		{
			name: "composite with one coded child",
			result: &Result{Barcodes: []*Result{
				{},
				{CodeResult: &CodeResult{Code: "123", Format: "code_128"}},
			}},
			want: true,
		},
		{
			name: "composite with only sentinel children",
			result: &Result{Barcodes: []*Result{
				{},
				{Boxes: []BoundingBox{{}}},
			}},
			want: false,
		},
		{
			name: "nested composite",
			result: &Result{Barcodes: []*Result{
				{Barcodes: []*Result{
					{CodeResult: &CodeResult{Code: "9", Format: "code_39"}},
				}},
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.HasCode(); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResult_WalkLeaves(t *testing.T) {
	leaf1 := &Result{CodeResult: &CodeResult{Code: "a"}}
	leaf2 := &Result{}
	leaf3 := &Result{CodeResult: &CodeResult{Code: "b"}}
	composite := &Result{Barcodes: []*Result{
		leaf1,
		{Barcodes: []*Result{leaf2, leaf3}},
	}}

	var visited []*Result
	composite.WalkLeaves(func(r *Result) { visited = append(visited, r) })

	if len(visited) != 3 {
		t.Fatalf("expected 3 leaves, got %d", len(visited))
	}
	if visited[0] != leaf1 || visited[1] != leaf2 || visited[2] != leaf3 {
		t.Errorf("leaves visited out of order")
	}
}

func TestPixelBuffer_Snapshot(t *testing.T) {
	buf := NewPixelBuffer(Size{Width: 4, Height: 2})
	for i := range buf.Data {
		buf.Data[i] = uint8(i)
	}

	snap := buf.Snapshot()
	if snap == buf {
		t.Fatal("snapshot must be a distinct buffer")
	}

	// Mutating the original must not leak into the snapshot.
	buf.Data[0] = 200
	if snap.Data[0] != 0 {
		t.Errorf("snapshot observed later mutation: got %d", snap.Data[0])
	}
}

func TestResample_NearestNeighbor(t *testing.T) {
	src := NewPixelBuffer(Size{Width: 4, Height: 4})
	for i := range src.Data {
		src.Data[i] = uint8(i * 10)
	}

	dst := NewPixelBuffer(Size{Width: 2, Height: 2})
	Resample(dst, src)

	want := []uint8{0, 20, 80, 100}
	for i, v := range want {
		if dst.Data[i] != v {
			t.Errorf("dst.Data[%d] = %d, want %d", i, dst.Data[i], v)
		}
	}
}

func TestResample_SameSizeCopies(t *testing.T) {
	src := NewPixelBuffer(Size{Width: 3, Height: 3})
	src.Data[4] = 99
	dst := NewPixelBuffer(Size{Width: 3, Height: 3})

	Resample(dst, src)
	if dst.Data[4] != 99 {
		t.Errorf("expected straight copy, got %d", dst.Data[4])
	}
}
