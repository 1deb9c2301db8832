package imgextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSobel_Reflect101(t *testing.T) {
	testCases := []struct{ i, n, want int }{
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{2, 5, 2},
		{0, 1, 0},
		{-1, 1, 0},
		{3, 3, 1},
	}
	for _, tc := range testCases {
		if got := reflect101(tc.i, tc.n); got != tc.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tc.i, tc.n, got, tc.want)
		}
	}
}

func TestSobel_BlurStep(t *testing.T) {
	src := bufferFromImage(stepGray(8, 4))

	blurred := gaussianBlur3(src)
	for y := 0; y < 4; y++ {
		assert.Equal(t, []uint8{0, 0, 0, 64, 191, 255, 255, 255}, blurred.Pix[y*8:(y+1)*8])
	}
}

func TestSobel_ConvertScaleAbs(t *testing.T) {
	got := convertScaleAbs([]int16{-300, -5, 0, 200, 32767, -32768})
	assert.Equal(t, []uint8{255, 5, 0, 200, 255, 255}, got)
}

func TestSobel_AddWeightedRoundsHalfToEven(t *testing.T) {
	got := addWeighted([]uint8{1, 1, 3, 255, 255}, 0.5, []uint8{2, 0, 0, 255, 0}, 0.5, 0)
	assert.Equal(t, []uint8{2, 0, 2, 255, 128}, got)
}

func TestSobel_RidgeVerticalEdge(t *testing.T) {
	src := bufferFromImage(stepGray(8, 4))

	ridge, err := ridgeStrength(src)
	assert.NoError(t, err)
	assert.Equal(t, Grayscale, ridge.Layout)
	assert.Equal(t, 8, ridge.Width)
	assert.Equal(t, 4, ridge.Height)

	want := []uint8{0, 0, 128, 128, 128, 128, 0, 0}
	for y := 0; y < 4; y++ {
		assert.Equal(t, want, ridge.Pix[y*8:(y+1)*8], "row %d", y)
	}
}

func TestSobel_RidgeHorizontalEdgeFromColor(t *testing.T) {
	// Top half black, bottom half white, stored as R,G,B,A.
	src := NewBuffer(4, 8, Quad)
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			i := src.PixOffset(x, y)
			if y >= 4 {
				copy(src.Pix[i:i+3], []uint8{255, 255, 255})
			}
			src.Pix[i+3] = 255
		}
	}

	ridge, err := ridgeStrength(src)
	assert.NoError(t, err)

	want := []uint8{0, 0, 128, 128, 128, 128, 0, 0}
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, want[y], ridge.Pix[y*4+x], "pixel (%d,%d)", x, y)
		}
	}
}

func TestSobel_RidgeUniformIsZero(t *testing.T) {
	src := NewBuffer(5, 5, TriChannel)
	for i := range src.Pix {
		src.Pix[i] = 90
	}
	ridge, err := ridgeStrength(src)
	assert.NoError(t, err)
	for _, v := range ridge.Pix {
		if v != 0 {
			t.Fatalf("uniform image should have no ridges, got %v", ridge.Pix)
		}
	}
}

func TestSobel_RidgeSinglePixel(t *testing.T) {
	ridge, err := ridgeStrength(&Buffer{Width: 1, Height: 1, Layout: Grayscale, Pix: []uint8{77}})
	assert.NoError(t, err)
	assert.Equal(t, []uint8{0}, ridge.Pix)
}

func TestSobel_RidgeEmpty(t *testing.T) {
	_, err := ridgeStrength(&Buffer{})
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}
