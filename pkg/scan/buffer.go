package scan

// PixelBuffer is a grayscale frame at processing resolution. One live
// buffer exists per active pipeline; the control loop overwrites it in
// place every tick, so its identity is stable across ticks. Consumers that
// need pixel data beyond the current tick must copy it out (Snapshot).
type PixelBuffer struct {
	Size Size
	Data []uint8 // row-major luminance, len == Width*Height
}

// NewPixelBuffer allocates a zeroed buffer for the given size.
func NewPixelBuffer(size Size) *PixelBuffer {
	return &PixelBuffer{
		Size: size,
		Data: make([]uint8, size.Width*size.Height),
	}
}

// At returns the luminance at (x, y). No bounds check on the hot path.
func (b *PixelBuffer) At(x, y int) uint8 {
	return b.Data[y*b.Size.Width+x]
}

// CopyFrom overwrites the buffer's pixels with src. The two buffers must
// share dimensions; CopyFrom never reallocates.
func (b *PixelBuffer) CopyFrom(src *PixelBuffer) {
	copy(b.Data, src.Data)
}

// Snapshot returns an independent copy of the buffer as it is right now.
// Workers decode against snapshots so later ticks cannot mutate the frame
// under them.
func (b *PixelBuffer) Snapshot() *PixelBuffer {
	out := NewPixelBuffer(b.Size)
	copy(out.Data, b.Data)
	return out
}
