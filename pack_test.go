package imgextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPack_CopiesPixels(t *testing.T) {
	buf := &Buffer{Width: 2, Height: 1, Layout: Quad, Pix: []uint8{1, 2, 3, 4, 5, 6, 7, 8}}
	var dims Dimensions

	out := Pack(buf, &dims)

	assert.Equal(t, Dimensions{2, 1}, dims)
	assert.Equal(t, buf.Pix, out)

	out[0] = 99
	assert.Equal(t, uint8(1), buf.Pix[0], "packed bytes must not alias the buffer")
}

func TestPack_EmptyZeroesDimensions(t *testing.T) {
	dims := Dimensions{640, 480}

	out := Pack(nil, &dims)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, Dimensions{0, 0}, dims)

	dims = Dimensions{3, 3}
	out = Pack(&Buffer{Layout: Grayscale}, &dims)
	assert.Empty(t, out)
	assert.Equal(t, Dimensions{0, 0}, dims)

	assert.NotPanics(t, func() { Pack(nil, nil) })
}

func TestPack_Frame(t *testing.T) {
	f := packFrame(NewBuffer(3, 2, Grayscale))
	assert.Equal(t, 3, f.Width)
	assert.Equal(t, 2, f.Height)
	assert.Equal(t, 1, f.Channels)
	assert.Len(t, f.Pixels, 6)
	assert.False(t, f.Empty())

	empty := packFrame(nil)
	assert.True(t, empty.Empty())
	assert.Zero(t, empty.Channels)
}
