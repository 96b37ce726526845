package scan

// Resample writes src into dst, nearest-neighbor scaled to dst's
// resolution. Sources use it to fill the processing buffer when the
// processing resolution differs from the capture resolution.
func Resample(dst, src *PixelBuffer) {
	if dst.Size == src.Size {
		copy(dst.Data, src.Data)
		return
	}
	for y := 0; y < dst.Size.Height; y++ {
		sy := y * src.Size.Height / dst.Size.Height
		for x := 0; x < dst.Size.Width; x++ {
			sx := x * src.Size.Width / dst.Size.Width
			dst.Data[y*dst.Size.Width+x] = src.Data[sy*src.Size.Width+sx]
		}
	}
}
