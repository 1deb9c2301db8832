package imgextract

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/toposonics/imgextract/utils"
)

// ResampleFilter selects the interpolation used by the resizer.
type ResampleFilter int

// Area is the default: every destination pixel averages the source pixels
// its footprint covers. The other filters are delegated to imaging.
const (
	Area ResampleFilter = iota
	Lanczos
	Linear
	Box
	NearestNeighbor
)

var filterNames = map[ResampleFilter]string{
	Area:            "area",
	Lanczos:         "lanczos",
	Linear:          "linear",
	Box:             "box",
	NearestNeighbor: "nearest",
}

func (f ResampleFilter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

// ParseFilter resolves a filter by its name.
func ParseFilter(name string) (ResampleFilter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Area, nil
	}
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return Area, fmt.Errorf("unknown resample filter %q", name)
}

func (f ResampleFilter) imaging() (imaging.ResampleFilter, bool) {
	switch f {
	case Lanczos:
		return imaging.Lanczos, true
	case Linear:
		return imaging.Linear, true
	case Box:
		return imaging.Box, true
	case NearestNeighbor:
		return imaging.NearestNeighbor, true
	}
	return imaging.ResampleFilter{}, false
}

// TargetSize computes the resized geometry for a source of srcW x srcH
// pixels scaled to targetWidth. The height is derived from the floating
// point aspect ratio and truncated, not rounded.
func TargetSize(srcW, srcH, targetWidth int) (int, int, error) {
	if targetWidth <= 0 {
		return 0, 0, fmt.Errorf("%w: target width %d", ErrInvalidSize, targetWidth)
	}
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("%w: source %dx%d", ErrInvalidSize, srcW, srcH)
	}
	aspect := float64(srcW) / float64(srcH)
	height := int(float64(targetWidth) / aspect)
	if height <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d scaled to width %d has no rows",
			ErrInvalidSize, srcW, srcH, targetWidth)
	}
	return targetWidth, height, nil
}

// resample resizes src to width x height keeping its layout.
func resample(src *Buffer, width, height int, filter ResampleFilter) (*Buffer, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if f, ok := filter.imaging(); ok {
		res := imaging.Resize(src.Image(), width, height, f)
		return bufferFromNRGBA(res, src.Layout), nil
	}
	if filter != Area {
		return nil, fmt.Errorf("unknown resample filter %v", filter)
	}
	return resizeArea(src, width, height), nil
}

// areaTap is the contribution of one source sample to a destination sample.
type areaTap struct {
	index  int
	weight float64
}

// areaTaps maps every destination index onto the source indices its
// footprint overlaps, weighted by the covered fraction.
func areaTaps(srcLen, dstLen int) [][]areaTap {
	scale := float64(srcLen) / float64(dstLen)
	taps := make([][]areaTap, dstLen)

	for d := 0; d < dstLen; d++ {
		start := float64(d) * scale
		end := start + scale
		for s := int(start); s < srcLen && float64(s) < end; s++ {
			lo := math.Max(start, float64(s))
			hi := math.Min(end, float64(s+1))
			if w := hi - lo; w > 1e-9 {
				taps[d] = append(taps[d], areaTap{index: s, weight: w / scale})
			}
		}
	}
	return taps
}

// resizeArea resamples with separable area averaging, horizontally first.
func resizeArea(src *Buffer, width, height int) *Buffer {
	if width == src.Width && height == src.Height {
		return src.Clone()
	}
	if src.Width == 2*width && src.Height == 2*height {
		return halve(src)
	}
	ch := src.Channels()
	xTaps := areaTaps(src.Width, width)
	yTaps := areaTaps(src.Height, height)

	// Horizontal pass: src.Height rows of width pixels.
	tmp := make([]float64, width*src.Height*ch)
	for y := 0; y < src.Height; y++ {
		srow := src.Pix[y*src.Stride():]
		trow := tmp[y*width*ch:]
		for x, taps := range xTaps {
			for c := 0; c < ch; c++ {
				var sum float64
				for _, t := range taps {
					sum += float64(srow[t.index*ch+c]) * t.weight
				}
				trow[x*ch+c] = sum
			}
		}
	}

	dst := NewBuffer(width, height, src.Layout)
	for y, taps := range yTaps {
		drow := dst.Pix[y*dst.Stride():]
		for x := 0; x < width*ch; x++ {
			var sum float64
			for _, t := range taps {
				sum += tmp[t.index*width*ch+x] * t.weight
			}
			drow[x] = saturate(sum)
		}
	}
	return dst
}

// halve averages every 2x2 block in integer arithmetic, rounding half up.
func halve(src *Buffer) *Buffer {
	ch := src.Channels()
	dst := NewBuffer(src.Width/2, src.Height/2, src.Layout)
	stride := src.Stride()

	for y := 0; y < dst.Height; y++ {
		top := src.Pix[2*y*stride:]
		bottom := src.Pix[(2*y+1)*stride:]
		drow := dst.Pix[y*dst.Stride():]
		for x := 0; x < dst.Width; x++ {
			for c := 0; c < ch; c++ {
				i, j := 2*x*ch+c, (2*x+1)*ch+c
				sum := uint32(top[i]) + uint32(top[j]) + uint32(bottom[i]) + uint32(bottom[j])
				drow[x*ch+c] = uint8((sum + 2) >> 2)
			}
		}
	}
	return dst
}

// saturate rounds half to even and clamps to the 8-bit range.
func saturate(v float64) uint8 {
	return uint8(utils.Clamp(math.RoundToEven(v), 0, 255))
}

// bufferFromNRGBA converts an NRGBA image back to the given layout.
func bufferFromNRGBA(img *image.NRGBA, layout Layout) *Buffer {
	dx, dy := img.Bounds().Dx(), img.Bounds().Dy()
	dst := NewBuffer(dx, dy, layout)
	di := 0
	for y := 0; y < dy; y++ {
		si := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		for x := 0; x < dx; x++ {
			s := img.Pix[si : si+4 : si+4]
			switch layout {
			case Grayscale:
				dst.Pix[di] = s[0]
			case TriChannel:
				dst.Pix[di+0] = s[2]
				dst.Pix[di+1] = s[1]
				dst.Pix[di+2] = s[0]
			default:
				copy(dst.Pix[di:di+4], s)
			}
			di += layout.Channels()
			si += 4
		}
	}
	return dst
}
