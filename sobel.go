package imgextract

import (
	"math"

	"github.com/toposonics/imgextract/utils"
)

type kernel [][]int32

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// sobel convolves a single channel buffer with a 3x3 derivative kernel.
// The result is kept in 16-bit signed samples so negative slopes and
// magnitudes above 255 are not clipped. Borders are mirrored with reflect101.
// See https://en.wikipedia.org/wiki/Sobel_operator
func sobel(src *Buffer, k kernel) []int16 {
	w, h := src.Width, src.Height
	grad := make([]int16, w*h)

	for y := 0; y < h; y++ {
		rows := [3][]uint8{
			src.Pix[reflect101(y-1, h)*w:],
			src.Pix[y*w:],
			src.Pix[reflect101(y+1, h)*w:],
		}
		for x := 0; x < w; x++ {
			cols := [3]int{reflect101(x-1, w), x, reflect101(x+1, w)}
			var sum int32
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					if k[ky][kx] != 0 {
						sum += int32(rows[ky][cols[kx]]) * k[ky][kx]
					}
				}
			}
			grad[y*w+x] = int16(utils.Clamp(sum, math.MinInt16, math.MaxInt16))
		}
	}
	return grad
}

// convertScaleAbs takes the absolute value of every gradient sample and
// saturates it to 8 bits.
func convertScaleAbs(grad []int16) []uint8 {
	dst := make([]uint8, len(grad))
	for i, g := range grad {
		dst[i] = uint8(utils.Min(utils.Abs(int32(g)), 255))
	}
	return dst
}

// addWeighted computes alpha*a + beta*b + gamma per sample, rounding half to
// even and saturating to 8 bits.
func addWeighted(a []uint8, alpha float64, b []uint8, beta, gamma float64) []uint8 {
	dst := make([]uint8, len(a))
	for i := range a {
		dst[i] = saturate(float64(a[i])*alpha + float64(b[i])*beta + gamma)
	}
	return dst
}

// ridgeStrength computes the edge magnitude map of a buffer: grayscale,
// 3x3 Gaussian blur, horizontal and vertical Sobel derivatives, absolute
// values, and their equally weighted sum. The result is a Grayscale buffer
// of the same size where brighter means a steeper intensity transition.
func ridgeStrength(src *Buffer) (*Buffer, error) {
	gray, err := grayscale(src)
	if err != nil {
		return nil, err
	}
	blurred := gaussianBlur3(gray)

	absX := convertScaleAbs(sobel(blurred, kernelX))
	absY := convertScaleAbs(sobel(blurred, kernelY))

	return &Buffer{
		Width:  src.Width,
		Height: src.Height,
		Layout: Grayscale,
		Pix:    addWeighted(absX, 0.5, absY, 0.5, 0),
	}, nil
}
