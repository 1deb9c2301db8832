package imgextract

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeImg opens and decodes the image file found at path. The decoded
// image type is kept as is, no orientation or color conversion is applied.
func decodeImg(path string) (image.Image, error) {
	if path == "" || !utf8.ValidString(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDecodable, err)
	}
	return img, nil
}

// bufferFromImage converts a decoded image into a Buffer, keeping the
// channel count of the source: gray images stay single channel, opaque
// color images become TriChannel and images carrying alpha become Quad.
// 16-bit samples are reduced to their high byte.
func bufferFromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	minX, minY := bounds.Min.X, bounds.Min.Y
	dx, dy := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		dst := NewBuffer(dx, dy, Grayscale)
		for y := 0; y < dy; y++ {
			si := src.PixOffset(minX, minY+y)
			copy(dst.Pix[y*dx:(y+1)*dx], src.Pix[si:si+dx])
		}
		return dst
	case *image.Gray16:
		dst := NewBuffer(dx, dy, Grayscale)
		for y := 0; y < dy; y++ {
			si := src.PixOffset(minX, minY+y)
			for x := 0; x < dx; x++ {
				dst.Pix[y*dx+x] = src.Pix[si+x*2]
			}
		}
		return dst
	case *image.NRGBA:
		dst := NewBuffer(dx, dy, Quad)
		rowSize := dx * 4
		for y := 0; y < dy; y++ {
			si := src.PixOffset(minX, minY+y)
			copy(dst.Pix[y*rowSize:(y+1)*rowSize], src.Pix[si:si+rowSize])
		}
		return dst
	case *image.YCbCr:
		dst := NewBuffer(dx, dy, TriChannel)
		di := 0
		for y := 0; y < dy; y++ {
			for x := 0; x < dx; x++ {
				siy := src.YOffset(minX+x, minY+y)
				sic := src.COffset(minX+x, minY+y)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = b
				dst.Pix[di+1] = g
				dst.Pix[di+2] = r
				di += 3
			}
		}
		return dst
	case *image.CMYK:
		dst := NewBuffer(dx, dy, TriChannel)
		di := 0
		for y := 0; y < dy; y++ {
			si := src.PixOffset(minX, minY+y)
			for x := 0; x < dx; x++ {
				s := src.Pix[si+x*4 : si+x*4+4 : si+x*4+4]
				r, g, b := color.CMYKToRGB(s[0], s[1], s[2], s[3])
				dst.Pix[di+0] = b
				dst.Pix[di+1] = g
				dst.Pix[di+2] = r
				di += 3
			}
		}
		return dst
	case *image.Paletted:
		if opaquePalette(src.Palette) {
			return triChannelFrom(img)
		}
		return quadFrom(img)
	case *image.RGBA, *image.RGBA64:
		// Decoders use the premultiplied types for color data without an
		// alpha channel, so only a translucent image needs four samples.
		if img.(interface{ Opaque() bool }).Opaque() {
			return triChannelFrom(img)
		}
		return quadFrom(img)
	default:
		return quadFrom(img)
	}
}

// triChannelFrom converts an opaque image to a TriChannel buffer.
func triChannelFrom(img image.Image) *Buffer {
	bounds := img.Bounds()
	dst := NewBuffer(bounds.Dx(), bounds.Dy(), TriChannel)
	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.Pix[di+0] = c.B
			dst.Pix[di+1] = c.G
			dst.Pix[di+2] = c.R
			di += 3
		}
	}
	return dst
}

// quadFrom converts any image to a non-premultiplied Quad buffer.
func quadFrom(img image.Image) *Buffer {
	bounds := img.Bounds()
	dst := NewBuffer(bounds.Dx(), bounds.Dy(), Quad)
	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.Pix[di+0] = c.R
			dst.Pix[di+1] = c.G
			dst.Pix[di+2] = c.B
			dst.Pix[di+3] = c.A
			di += 4
		}
	}
	return dst
}

func opaquePalette(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return false
		}
	}
	return true
}

// Supported output formats of Encode.
const (
	FormatRaw  = "raw"
	FormatPNG  = "png"
	FormatJPEG = "jpg"
	FormatBMP  = "bmp"
)

// FormatFromPath guesses the output format from a file extension.
// Paths without a known image extension are written raw.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".bmp":
		return FormatBMP
	default:
		return FormatRaw
	}
}

// Encode writes the buffer to w in the requested format. The raw format is
// the packed byte sequence, the other formats go through the image encoders.
func Encode(w io.Writer, buf *Buffer, format string) error {
	if buf.Empty() {
		return ErrEmptyBuffer
	}
	switch strings.ToLower(format) {
	case "", FormatRaw:
		_, err := w.Write(Pack(buf, nil))
		return err
	case FormatPNG:
		return png.Encode(w, buf.Image())
	case FormatJPEG, "jpeg":
		return jpeg.Encode(w, buf.Image(), &jpeg.Options{Quality: 100})
	case FormatBMP:
		return bmp.Encode(w, buf.Image())
	default:
		return errors.New("unsupported image format")
	}
}
