package imgextract

// reflect101 mirrors an out of range index around the border without
// repeating the border sample: -1 maps to 1 and n maps to n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// gaussianBlur3 smooths a single channel buffer with the 3x3 Gaussian kernel
// derived from a zero sigma, i.e. the separable [1 2 1]/4 kernel, rounding
// half up. Borders are mirrored with reflect101.
func gaussianBlur3(src *Buffer) *Buffer {
	w, h := src.Width, src.Height
	tmp := make([]uint16, w*h)

	for y := 0; y < h; y++ {
		up := src.Pix[reflect101(y-1, h)*w:]
		mid := src.Pix[y*w:]
		down := src.Pix[reflect101(y+1, h)*w:]
		for x := 0; x < w; x++ {
			tmp[y*w+x] = uint16(up[x]) + 2*uint16(mid[x]) + uint16(down[x])
		}
	}

	dst := NewBuffer(w, h, Grayscale)
	for y := 0; y < h; y++ {
		row := tmp[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			sum := uint32(row[reflect101(x-1, w)]) + 2*uint32(row[x]) + uint32(row[reflect101(x+1, w)])
			dst.Pix[y*w+x] = uint8((sum + 8) >> 4)
		}
	}
	return dst
}
