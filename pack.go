package imgextract

// Dimensions holds the width and height reported alongside packed pixels.
type Dimensions = [2]int

// Frame is a packed pixel payload together with its geometry.
type Frame struct {
	Pixels   []byte
	Width    int
	Height   int
	Channels int
}

// Empty reports whether the frame carries no pixel.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Pixels) == 0
}

// Pack flattens the buffer into row-major interleaved bytes and writes its
// width and height into dims. A nil or empty buffer produces an empty,
// non-nil slice and zeroed dimensions, so callers never see stale values.
func Pack(buf *Buffer, dims *Dimensions) []byte {
	if buf.Empty() {
		if dims != nil {
			dims[0], dims[1] = 0, 0
		}
		return []byte{}
	}
	n := buf.Width * buf.Height * buf.Channels()
	out := make([]byte, n)
	copy(out, buf.Pix[:n])

	if dims != nil {
		dims[0], dims[1] = buf.Width, buf.Height
	}
	return out
}

// packFrame is Pack returning a Frame.
func packFrame(buf *Buffer) *Frame {
	var dims Dimensions
	pix := Pack(buf, &dims)
	f := &Frame{Pixels: pix, Width: dims[0], Height: dims[1]}
	if len(pix) > 0 {
		f.Channels = buf.Channels()
	}
	return f
}
