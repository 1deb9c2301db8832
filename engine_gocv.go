//go:build gocv

package imgextract

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CVEngine binds the pipeline to OpenCV: IMRead, Resize with area
// interpolation, CvtColor, GaussianBlur, Sobel, ConvertScaleAbs and AddWeighted.
type CVEngine struct {
	Filter ResampleFilter
}

var _ Engine = (*CVEngine)(nil)

// NewCVEngine returns an OpenCV backed engine.
func NewCVEngine(filter ResampleFilter) *CVEngine {
	return &CVEngine{Filter: filter}
}

// DefaultEngine returns the engine used when none is configured.
// Builds with the gocv tag use OpenCV.
func DefaultEngine(filter ResampleFilter) Engine {
	return NewCVEngine(filter)
}

// Name implements Engine.
func (e *CVEngine) Name() string {
	return "opencv"
}

// Load implements Engine. Four channel images are reordered from OpenCV's
// B,G,R,A to R,G,B,A so Quad buffers mean the same thing in both engines.
func (e *CVEngine) Load(path string) (*Buffer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer src.Close()

	if src.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNotDecodable, path)
	}
	buf, err := narrowMat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDecodable, path, err)
	}
	if buf.Layout != Quad {
		return buf, nil
	}
	return convertColor(buf, gocv.ColorBGRAToRGBA)
}

// narrowMat copies an 8 or 16-bit Mat into a Buffer. 16-bit samples keep
// their high byte, like the native decoder does.
func narrowMat(m gocv.Mat) (*Buffer, error) {
	switch depth := m.ElemSize() / m.Channels(); depth {
	case 1:
		return matToBuffer(m)
	case 2:
		layout, err := LayoutFromChannels(m.Channels())
		if err != nil {
			return nil, err
		}
		wide, err := m.DataPtrUint16()
		if err != nil {
			return nil, err
		}
		buf := NewBuffer(m.Cols(), m.Rows(), layout)
		for i := range buf.Pix {
			buf.Pix[i] = uint8(wide[i] >> 8)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("unsupported %d-byte samples", depth)
	}
}

// Resize implements Engine.
func (e *CVEngine) Resize(buf *Buffer, width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	src, err := bufferToMat(buf)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, e.interpolation())

	return matToBuffer(dst)
}

func (e *CVEngine) interpolation() gocv.InterpolationFlags {
	switch e.Filter {
	case Lanczos:
		return gocv.InterpolationLanczos4
	case Linear:
		return gocv.InterpolationLinear
	case NearestNeighbor:
		return gocv.InterpolationNearestNeighbor
	default:
		return gocv.InterpolationArea
	}
}

// NormalizeChannels implements Engine.
func (e *CVEngine) NormalizeChannels(buf *Buffer) (*Buffer, error) {
	switch buf.Layout {
	case Quad:
		return buf, buf.validate()
	case TriChannel:
		return convertColor(buf, gocv.ColorBGRToRGBA)
	case Grayscale:
		return convertColor(buf, gocv.ColorGrayToBGRA)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedLayout, buf.Layout)
}

func convertColor(buf *Buffer, code gocv.ColorConversionCode) (*Buffer, error) {
	src, err := bufferToMat(buf)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, code)

	return matToBuffer(dst)
}

// RidgeStrength implements Engine.
func (e *CVEngine) RidgeStrength(buf *Buffer) (*Buffer, error) {
	src, err := bufferToMat(buf)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	switch buf.Layout {
	case Quad:
		gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)
	case TriChannel:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	default:
		src.CopyTo(&gray)
	}
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderDefault)

	gradX, gradY := gocv.NewMat(), gocv.NewMat()
	defer gradX.Close()
	defer gradY.Close()
	absX, absY := gocv.NewMat(), gocv.NewMat()
	defer absX.Close()
	defer absY.Close()

	gocv.Sobel(blurred, &gradX, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.ConvertScaleAbs(gradX, &absX, 1, 0)
	gocv.Sobel(blurred, &gradY, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderDefault)
	gocv.ConvertScaleAbs(gradY, &absY, 1, 0)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.AddWeighted(absX, 0.5, absY, 0.5, 0, &edges)

	return matToBuffer(edges)
}

func bufferToMat(buf *Buffer) (gocv.Mat, error) {
	if err := buf.validate(); err != nil {
		return gocv.Mat{}, err
	}
	var mt gocv.MatType
	switch buf.Layout {
	case Grayscale:
		mt = gocv.MatTypeCV8UC1
	case TriChannel:
		mt = gocv.MatTypeCV8UC3
	default:
		mt = gocv.MatTypeCV8UC4
	}
	return gocv.NewMatFromBytes(buf.Height, buf.Width, mt, buf.Pix)
}

func matToBuffer(m gocv.Mat) (*Buffer, error) {
	if m.Empty() {
		return nil, ErrEmptyBuffer
	}
	layout, err := LayoutFromChannels(m.Channels())
	if err != nil {
		return nil, err
	}
	return &Buffer{
		Width:  m.Cols(),
		Height: m.Rows(),
		Layout: layout,
		Pix:    m.ToBytes(),
	}, nil
}
