package trimesh

import (
	"image"
	"math"
)

type kernel [3][3]float64

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

// Sobel computes the gradient magnitude of a grayscale image. Magnitudes
// not exceeding the threshold are zeroed, the others are halved and
// clamped to a byte.
func Sobel(src *image.NRGBA, threshold float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(b)

	lum := func(x, y int) float64 {
		x = Min(Max(x, 0), w-1)
		y = Min(Max(y, 0), h-1)
		return float64(src.Pix[(x+y*w)<<2])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumX, sumY float64
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					v := lum(x+kx-1, y+ky-1)
					sumX += v * kernelX[ky][kx]
					sumY += v * kernelY[ky][kx]
				}
			}
			var v uint8
			if m := math.Hypot(sumX, sumY); m > threshold {
				v = uint8(Min(m/2, 255))
			}
			i := (x + y*w) << 2
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = v, v, v, 255
		}
	}
	return dst
}
