package imgextract

import (
	"fmt"
	"image"
)

// Layout identifies the interleaved channel arrangement of a Buffer.
type Layout int

// The supported pixel layouts.
const (
	// Grayscale holds a single luminance sample per pixel.
	Grayscale Layout = iota + 1
	// TriChannel holds three color samples stored in reverse (B, G, R) order,
	// the order image decoders conventionally emit.
	TriChannel
	// Quad holds four samples per pixel, the last one being opacity.
	Quad
)

// Channels returns the number of samples per pixel, or 0 for an unknown layout.
func (l Layout) Channels() int {
	switch l {
	case Grayscale:
		return 1
	case TriChannel:
		return 3
	case Quad:
		return 4
	}
	return 0
}

func (l Layout) String() string {
	switch l {
	case Grayscale:
		return "gray"
	case TriChannel:
		return "bgr"
	case Quad:
		return "quad"
	}
	return fmt.Sprintf("layout(%d)", int(l))
}

// LayoutFromChannels resolves the layout matching a channel count.
func LayoutFromChannels(n int) (Layout, error) {
	switch n {
	case 1:
		return Grayscale, nil
	case 3:
		return TriChannel, nil
	case 4:
		return Quad, nil
	}
	return 0, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, n)
}

// Buffer is a dense 2D grid of 8-bit pixels. Rows are stored top to bottom
// without padding, samples of one pixel are interleaved.
type Buffer struct {
	Width  int
	Height int
	Layout Layout
	Pix    []uint8
}

// NewBuffer allocates a zeroed buffer of the given geometry.
func NewBuffer(width, height int, layout Layout) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Layout: layout,
		Pix:    make([]uint8, width*height*layout.Channels()),
	}
}

// Channels returns the number of samples per pixel.
func (b *Buffer) Channels() int {
	return b.Layout.Channels()
}

// Stride returns the distance in bytes between two vertically adjacent pixels.
func (b *Buffer) Stride() int {
	return b.Width * b.Channels()
}

// Empty reports whether the buffer holds no pixel.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0 || len(b.Pix) == 0
}

// PixOffset returns the index of the first sample of the pixel at (x, y).
func (b *Buffer) PixOffset(x, y int) int {
	return y*b.Stride() + x*b.Channels()
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	dst := &Buffer{Width: b.Width, Height: b.Height, Layout: b.Layout}
	dst.Pix = append([]uint8(nil), b.Pix...)
	return dst
}

func (b *Buffer) validate() error {
	if b.Empty() {
		return ErrEmptyBuffer
	}
	if b.Layout.Channels() == 0 {
		return fmt.Errorf("%w: %v", ErrUnsupportedLayout, b.Layout)
	}
	if want := b.Width * b.Height * b.Channels(); len(b.Pix) != want {
		return fmt.Errorf("buffer holds %d samples, geometry %dx%dx%d requires %d",
			len(b.Pix), b.Width, b.Height, b.Channels(), want)
	}
	return nil
}

// Image converts the buffer into an image.Image suitable for encoding.
// Grayscale buffers map to *image.Gray, the others to *image.NRGBA.
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	switch b.Layout {
	case Grayscale:
		dst := image.NewGray(rect)
		copy(dst.Pix, b.Pix)
		return dst
	case TriChannel:
		dst := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
			dst.Pix[j+0] = b.Pix[i+2]
			dst.Pix[j+1] = b.Pix[i+1]
			dst.Pix[j+2] = b.Pix[i+0]
			dst.Pix[j+3] = 0xff
		}
		return dst
	default:
		dst := image.NewNRGBA(rect)
		copy(dst.Pix, b.Pix)
		return dst
	}
}
