package imgextract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultTargetWidth is the width used by Process when a request leaves it unset.
const DefaultTargetWidth = 640

// TextureHandle is an opaque identifier of a platform texture.
type TextureHandle int

// TextureReader gives access to the pixels of a platform texture.
type TextureReader interface {
	ReadTexture(h TextureHandle) (*Buffer, error)
}

// Processor runs the extraction pipeline. It holds no mutable state and is
// safe for concurrent use.
type Processor struct {
	engine  Engine
	filter  ResampleFilter
	texture TextureReader
	logger  *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithEngine sets the engine doing the pixel work.
func WithEngine(e Engine) Option {
	return func(p *Processor) {
		p.engine = e
	}
}

// WithFilter sets the resample filter of the default engine. It has no
// effect when an engine is given explicitly.
func WithFilter(f ResampleFilter) Option {
	return func(p *Processor) {
		p.filter = f
	}
}

// WithTextureReader enables texture extraction through r.
func WithTextureReader(r TextureReader) Option {
	return func(p *Processor) {
		p.texture = r
	}
}

// WithLogger sets the logger receiving debug records of every stage.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates a processor. Without options it uses the default
// engine with area resampling and reports texture extraction as unsupported.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		filter: Area,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		p.engine = DefaultEngine(p.filter)
	}
	p.logger = p.logger.With(zap.String("engine", p.engine.Name()))
	return p
}

// ExtractFromFile loads the image at path, resizes it to targetWidth
// preserving the aspect ratio and returns its pixels as R,G,B,A bytes.
// The final width and height are written into dims. On failure dims is
// zeroed and the returned slice is empty.
func (p *Processor) ExtractFromFile(path string, targetWidth int, dims *Dimensions) ([]byte, error) {
	buf, err := p.extract(path, targetWidth)
	if err != nil {
		return Pack(nil, dims), err
	}
	return Pack(buf, dims), nil
}

// ExtractFromTexture is the texture counterpart of ExtractFromFile. Unless
// a TextureReader is configured it always returns an empty slice, zeroed
// dims and ErrTextureUnsupported, whatever the handle.
func (p *Processor) ExtractFromTexture(h TextureHandle, targetWidth int, dims *Dimensions) ([]byte, error) {
	if p.texture == nil {
		p.logger.Debug("texture extraction unsupported", zap.Int("texture", int(h)))
		return Pack(nil, dims), ErrTextureUnsupported
	}
	src, err := p.texture.ReadTexture(h)
	if err != nil {
		return Pack(nil, dims), fmt.Errorf("read texture %d: %w", h, err)
	}
	buf, err := p.resizeAndNormalize(src, targetWidth)
	if err != nil {
		return Pack(nil, dims), err
	}
	return Pack(buf, dims), nil
}

// ComputeRidgeStrength loads the image at path, resizes it to targetWidth
// and returns its single channel edge magnitude. The final width and height
// are written into dims. On failure dims is zeroed and the returned slice
// is empty.
func (p *Processor) ComputeRidgeStrength(path string, targetWidth int, dims *Dimensions) ([]byte, error) {
	buf, err := p.ridge(path, targetWidth)
	if err != nil {
		return Pack(nil, dims), err
	}
	return Pack(buf, dims), nil
}

func (p *Processor) load(path string) (*Buffer, error) {
	buf, err := p.engine.Load(path)
	if err != nil {
		p.logger.Debug("load failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	p.logger.Debug("loaded",
		zap.String("path", path),
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.Stringer("layout", buf.Layout),
	)
	return buf, nil
}

func (p *Processor) resize(src *Buffer, targetWidth int) (*Buffer, error) {
	width, height, err := TargetSize(src.Width, src.Height, targetWidth)
	if err != nil {
		return nil, err
	}
	res, err := p.engine.Resize(src, width, height)
	if err != nil {
		return nil, fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	p.logger.Debug("resized", zap.Int("width", res.Width), zap.Int("height", res.Height))
	return res, nil
}

func (p *Processor) resizeAndNormalize(src *Buffer, targetWidth int) (*Buffer, error) {
	res, err := p.resize(src, targetWidth)
	if err != nil {
		return nil, err
	}
	return p.engine.NormalizeChannels(res)
}

func (p *Processor) extract(path string, targetWidth int) (*Buffer, error) {
	if targetWidth <= 0 {
		return nil, fmt.Errorf("%w: target width %d", ErrInvalidSize, targetWidth)
	}
	src, err := p.load(path)
	if err != nil {
		return nil, err
	}
	return p.resizeAndNormalize(src, targetWidth)
}

func (p *Processor) ridge(path string, targetWidth int) (*Buffer, error) {
	if targetWidth <= 0 {
		return nil, fmt.Errorf("%w: target width %d", ErrInvalidSize, targetWidth)
	}
	src, err := p.load(path)
	if err != nil {
		return nil, err
	}
	res, err := p.resize(src, targetWidth)
	if err != nil {
		return nil, err
	}
	return p.engine.RidgeStrength(res)
}

// Request describes one Process call.
type Request struct {
	// URI is a file path or a file:// URL.
	URI string
	// Texture takes precedence over URI when set.
	Texture *TextureHandle
	// TargetWidth defaults to DefaultTargetWidth when zero.
	TargetWidth int
	// IncludeRidgeStrength adds the ridge map of the URI to the result.
	IncludeRidgeStrength bool
}

// Result is the outcome of Process.
type Result struct {
	Frame
	// Ridge is set when the request asked for it.
	Ridge *Frame
	// Unsupported reports a texture request on a platform without texture access.
	Unsupported bool
}

// Process runs the extraction described by req. A texture request on a
// platform without texture access is not an error: the result is empty and
// flagged Unsupported. The context is checked between stages.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	if req.URI == "" && req.Texture == nil {
		return nil, ErrNoSource
	}
	width := req.TargetWidth
	if width == 0 {
		width = DefaultTargetWidth
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.Texture != nil {
		var dims Dimensions
		pix, err := p.ExtractFromTexture(*req.Texture, width, &dims)
		if errors.Is(err, ErrTextureUnsupported) {
			return &Result{Frame: Frame{Pixels: pix}, Unsupported: true}, nil
		}
		if err != nil {
			return nil, err
		}
		return &Result{Frame: Frame{Pixels: pix, Width: dims[0], Height: dims[1], Channels: Quad.Channels()}}, nil
	}

	path, err := ResolvePath(req.URI)
	if err != nil {
		return nil, err
	}
	src, err := p.load(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resized, err := p.resize(src, width)
	if err != nil {
		return nil, err
	}
	rgba, err := p.engine.NormalizeChannels(resized)
	if err != nil {
		return nil, err
	}
	res := &Result{Frame: *packFrame(rgba)}

	if req.IncludeRidgeStrength {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ridge, err := p.engine.RidgeStrength(resized)
		if err != nil {
			return nil, fmt.Errorf("ridge strength: %w", err)
		}
		res.Ridge = packFrame(ridge)
	}
	return res, nil
}

// ResolvePath turns a file:// URL into a local path. Any other string is
// returned unchanged.
func ResolvePath(uri string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(uri), "file:") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: remote file URL %q", ErrInvalidPath, uri)
	}
	if u.Path == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, uri)
	}
	return u.Path, nil
}

var defaultProcessor = NewProcessor()

// ExtractFromFile runs Processor.ExtractFromFile with the default processor.
func ExtractFromFile(path string, targetWidth int, dims *Dimensions) ([]byte, error) {
	return defaultProcessor.ExtractFromFile(path, targetWidth, dims)
}

// ExtractFromTexture runs Processor.ExtractFromTexture with the default processor.
func ExtractFromTexture(h TextureHandle, targetWidth int, dims *Dimensions) ([]byte, error) {
	return defaultProcessor.ExtractFromTexture(h, targetWidth, dims)
}

// ComputeRidgeStrength runs Processor.ComputeRidgeStrength with the default processor.
func ComputeRidgeStrength(path string, targetWidth int, dims *Dimensions) ([]byte, error) {
	return defaultProcessor.ComputeRidgeStrength(path, targetWidth, dims)
}
