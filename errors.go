package imgextract

import "errors"

var (
	// ErrNotDecodable is returned when the source does not exist or cannot be decoded.
	ErrNotDecodable = errors.New("image not found or not decodable")
	// ErrInvalidPath is returned for empty or non UTF-8 paths.
	ErrInvalidPath = errors.New("invalid image path")
	// ErrInvalidSize is returned when the requested or computed geometry is degenerate.
	ErrInvalidSize = errors.New("invalid target size")
	// ErrUnsupportedLayout is returned for channel counts other than 1, 3 or 4.
	ErrUnsupportedLayout = errors.New("unsupported pixel layout")
	// ErrEmptyBuffer is returned when an operation receives a buffer without pixels.
	ErrEmptyBuffer = errors.New("empty pixel buffer")
	// ErrTextureUnsupported is the defined result of texture extraction on
	// platforms without texture pixel access.
	ErrTextureUnsupported = errors.New("texture extraction is not supported")
	// ErrNoSource is returned by Process when neither a URI nor a texture is given.
	ErrNoSource = errors.New("a file URI or texture handle is required")
)
