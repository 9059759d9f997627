package trimesh

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/image/draw"
)

// ImgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func ImgToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if b.Min.X == 0 && b.Min.Y == 0 {
		if src, ok := img.(*image.NRGBA); ok {
			return src
		}
	}
	dst := image.NewNRGBA(b.Sub(b.Min))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Downscale resizes the image so that its longest side does not exceed size.
// Smaller images are returned unchanged.
func Downscale(src *image.NRGBA, size int) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	longest := Max(w, h)
	if size <= 0 || longest <= size {
		return src
	}
	ratio := float64(size) / float64(longest)
	nw, nh := Max(1, int(float64(w)*ratio)), Max(1, int(float64(h)*ratio))

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Grayscale converts the image to grayscale mode, the luminance being
// stored in the three color channels.
func Grayscale(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		r, g, b := float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2])
		lum := uint8(math.Round(Min(255, r*0.299+g*0.587+b*0.114)))
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = lum, lum, lum, src.Pix[i+3]
	}
	return dst
}

// Blur applies a box blur of the given radius on a grayscale image.
func Blur(src *image.NRGBA, radius int) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	if radius <= 0 {
		return dst
	}
	side := radius*2 + 1
	convolutionFilter(setBlurMatrix(radius), dst, float64(side*side))
	return dst
}

// Luminance returns the red channel of the pixel nearest to (x, y),
// clamped to the image.
func Luminance(img *image.NRGBA, x, y float64) float64 {
	b := img.Bounds()
	px := Min(Max(int(math.Round(x)), b.Min.X), b.Max.X-1)
	py := Min(Max(int(math.Round(y)), b.Min.Y), b.Max.Y-1)
	return float64(img.Pix[img.PixOffset(px, py)])
}

// ColorAt returns the color of the pixel nearest to (x, y), clamped to the image.
func ColorAt(img *image.NRGBA, x, y float64) color.NRGBA {
	b := img.Bounds()
	px := Min(Max(int(x), b.Min.X), b.Max.X-1)
	py := Min(Max(int(y), b.Min.Y), b.Max.Y-1)
	return img.NRGBAAt(px, py)
}

// convolutionFilter convolves the matrix over the red channel of the image,
// replicating the result into the other color channels.
func convolutionFilter(matrix []float64, img *image.NRGBA, divisor float64) {
	var (
		width  = img.Bounds().Dx()
		height = img.Bounds().Dy()
		size   = int(math.Sqrt(float64(len(matrix))))
		dim    = size / 2
	)

	if divisor != 1 {
		for k := range matrix {
			matrix[k] /= divisor
		}
	}
	src := make([]float64, width*height)
	for i := range src {
		src[i] = float64(img.Pix[i*4])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc float64
			for row := -dim; row <= dim; row++ {
				sy := y + row
				if sy < 0 || sy >= height {
					continue
				}
				for col := -dim; col <= dim; col++ {
					sx := x + col
					if sx >= 0 && sx < width {
						acc += src[sx+sy*width] * matrix[(col+dim)+(row+dim)*size]
					}
				}
			}
			v := uint8(math.Round(Min(Max(acc, 0), 255)))
			i := (x + y*width) << 2
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = v, v, v
		}
	}
}

// Min returns the smallest of the values.
func Min[T constraints.Ordered](values ...T) T {
	acc := values[0]
	for _, v := range values {
		if v < acc {
			acc = v
		}
	}
	return acc
}

// Max returns the biggest of the values.
func Max[T constraints.Ordered](values ...T) T {
	acc := values[0]
	for _, v := range values {
		if v > acc {
			acc = v
		}
	}
	return acc
}

// setBlurMatrix populates a box matrix of the given radius.
func setBlurMatrix(radius int) []float64 {
	side := radius*2 + 1
	matrix := make([]float64, side*side)
	for i := range matrix {
		matrix[i] = 1
	}
	return matrix
}
