package imgextract

import "fmt"

// Engine performs the pixel work of the pipeline. Implementations must not
// retain buffers between calls.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string
	// Load decodes the image file at path keeping its channel count.
	Load(path string) (*Buffer, error)
	// Resize resamples buf to width x height keeping its layout.
	Resize(buf *Buffer, width, height int) (*Buffer, error)
	// NormalizeChannels converts buf to a Quad buffer.
	NormalizeChannels(buf *Buffer) (*Buffer, error)
	// RidgeStrength computes the single channel edge magnitude of buf.
	RidgeStrength(buf *Buffer) (*Buffer, error)
}

// NativeEngine is the pure Go engine.
type NativeEngine struct {
	Filter ResampleFilter
}

var _ Engine = (*NativeEngine)(nil)

// NewNativeEngine returns a pure Go engine resampling with filter.
func NewNativeEngine(filter ResampleFilter) *NativeEngine {
	return &NativeEngine{Filter: filter}
}

// Name implements Engine.
func (e *NativeEngine) Name() string {
	return "native"
}

// Load implements Engine.
func (e *NativeEngine) Load(path string) (*Buffer, error) {
	img, err := decodeImg(path)
	if err != nil {
		return nil, err
	}
	buf := bufferFromImage(img)
	if buf.Empty() {
		return nil, fmt.Errorf("%w: %s has no pixels", ErrNotDecodable, path)
	}
	return buf, nil
}

// Resize implements Engine.
func (e *NativeEngine) Resize(buf *Buffer, width, height int) (*Buffer, error) {
	return resample(buf, width, height, e.Filter)
}

// NormalizeChannels implements Engine.
func (e *NativeEngine) NormalizeChannels(buf *Buffer) (*Buffer, error) {
	return normalizeChannels(buf)
}

// RidgeStrength implements Engine.
func (e *NativeEngine) RidgeStrength(buf *Buffer) (*Buffer, error) {
	return ridgeStrength(buf)
}
