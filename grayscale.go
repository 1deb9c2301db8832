package imgextract

import "fmt"

// Luma weights 0.299, 0.587 and 0.114 in 14-bit fixed point.
const (
	grayShift = 14
	rToY      = 4899
	gToY      = 9617
	bToY      = 1868
)

func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*rToY + uint32(g)*gToY + uint32(b)*bToY + 1<<(grayShift-1)) >> grayShift)
}

// normalizeChannels returns a Quad buffer. Quad input is returned as is,
// TriChannel samples are reordered from B,G,R to R,G,B and gray samples are
// replicated; in both cases a fully opaque alpha sample is appended.
func normalizeChannels(src *Buffer) (*Buffer, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}

	switch src.Layout {
	case Quad:
		return src, nil
	case TriChannel:
		dst := NewBuffer(src.Width, src.Height, Quad)
		for i, j := 0, 0; i < len(src.Pix); i, j = i+3, j+4 {
			dst.Pix[j+0] = src.Pix[i+2]
			dst.Pix[j+1] = src.Pix[i+1]
			dst.Pix[j+2] = src.Pix[i+0]
			dst.Pix[j+3] = 0xff
		}
		return dst, nil
	case Grayscale:
		dst := NewBuffer(src.Width, src.Height, Quad)
		for i, y := range src.Pix {
			j := i * 4
			dst.Pix[j+0] = y
			dst.Pix[j+1] = y
			dst.Pix[j+2] = y
			dst.Pix[j+3] = 0xff
		}
		return dst, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedLayout, src.Layout)
}

// grayscale converts the buffer to a single channel luminance buffer.
// Quad buffers are read as R,G,B,A and TriChannel buffers as B,G,R.
// A Grayscale buffer is copied.
func grayscale(src *Buffer) (*Buffer, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	dst := NewBuffer(src.Width, src.Height, Grayscale)

	switch src.Layout {
	case Grayscale:
		copy(dst.Pix, src.Pix)
	case TriChannel:
		for i := range dst.Pix {
			s := src.Pix[i*3 : i*3+3 : i*3+3]
			dst.Pix[i] = luma(s[2], s[1], s[0])
		}
	case Quad:
		for i := range dst.Pix {
			s := src.Pix[i*4 : i*4+4 : i*4+4]
			dst.Pix[i] = luma(s[0], s[1], s[2])
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLayout, src.Layout)
	}
	return dst, nil
}
