package trimesh

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"
)

// Palette colors the bands from the lowest to the highest one.
var Palette = []color.RGBA{
	colornames.Midnightblue,
	colornames.Royalblue,
	colornames.Teal,
	colornames.Seagreen,
	colornames.Yellowgreen,
	colornames.Gold,
	colornames.Orange,
	colornames.Orangered,
	colornames.Firebrick,
}

// Renderer draws a processing result on a raster canvas.
type Renderer struct {
	LineWidth float64
	// Noise adds a grain of the given amount to the final image.
	Noise int
}

// Render draws the result of its mode.
func (r *Renderer) Render(res *Result) image.Image {
	b := res.Source.Bounds()
	ctx := gg.NewContext(b.Dx(), b.Dy())
	ctx.SetColor(colornames.White)
	ctx.Clear()

	switch res.Mode {
	case ModeContour:
		r.drawBands(ctx, res.Bands)
	case ModeVoronoi:
		r.drawWireframe(ctx, res.Triangles, color.RGBA{A: 40})
		r.drawGeometry(ctx, res.Source, res.Diagram)
	default:
		r.drawTriangles(ctx, res.Source, res.Triangles)
	}

	img := ctx.Image()
	if r.Noise > 0 {
		img = Noise(r.Noise, img)
	}
	return img
}

// Encode renders the result and writes it as PNG.
func (r *Renderer) Encode(w io.Writer, res *Result) error {
	if err := png.Encode(w, r.Render(res)); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

func (r *Renderer) lineWidth() float64 {
	if r.LineWidth <= 0 {
		return 1
	}
	return r.LineWidth
}

func (r *Renderer) drawBands(ctx *gg.Context, bands map[int][]TriMarker) {
	for _, k := range SortedBands(bands) {
		c := Palette[Min(k, len(Palette)-1)]
		for _, t := range bands[k] {
			tracePolygon(ctx, t.Polygon())
			ctx.SetColor(c)
			ctx.Fill()
		}
	}
}

// drawTriangles fills every triangle with the source color at its centroid.
func (r *Renderer) drawTriangles(ctx *gg.Context, src *image.NRGBA, tris []Triangle) {
	for _, t := range tris {
		cx := (t.P0.X + t.P1.X + t.P2.X) / 3
		cy := (t.P0.Y + t.P1.Y + t.P2.Y) / 3

		ctx.Push()
		tracePolygon(ctx, t.Polygon())
		ctx.SetFillStyle(gg.NewSolidPattern(ColorAt(src, cx, cy)))
		ctx.SetStrokeStyle(gg.NewSolidPattern(color.RGBA{A: 20}))
		ctx.SetLineWidth(r.lineWidth())
		ctx.FillPreserve()
		ctx.Stroke()
		ctx.Pop()
	}
}

func (r *Renderer) drawWireframe(ctx *gg.Context, tris []Triangle, c color.Color) {
	ctx.SetColor(c)
	ctx.SetLineWidth(r.lineWidth())
	for _, t := range tris {
		tracePolygon(ctx, t.Polygon())
		ctx.Stroke()
	}
}

func (r *Renderer) drawGeometry(ctx *gg.Context, src *image.NRGBA, g orb.Geometry) {
	ctx.SetLineWidth(r.lineWidth())
	switch g := g.(type) {
	case orb.MultiPoint:
		ctx.SetColor(colornames.Crimson)
		for _, p := range g {
			ctx.DrawCircle(p[0], p[1], 2*r.lineWidth())
			ctx.Fill()
		}
	case orb.MultiLineString:
		ctx.SetColor(colornames.Darkslateblue)
		for _, ls := range g {
			for i, p := range ls {
				if i == 0 {
					ctx.MoveTo(p[0], p[1])
				} else {
					ctx.LineTo(p[0], p[1])
				}
			}
			ctx.Stroke()
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			c := poly.Bound().Center()
			tracePolygon(ctx, poly)
			ctx.SetColor(ColorAt(src, c[0], c[1]))
			ctx.FillPreserve()
			ctx.SetColor(colornames.Darkslateblue)
			ctx.Stroke()
		}
	}
}

// tracePolygon adds the rings of the polygon to the current path.
func tracePolygon(ctx *gg.Context, p orb.Polygon) {
	for _, ring := range p {
		ctx.NewSubPath()
		for i, pt := range ring {
			if i == 0 {
				ctx.MoveTo(pt[0], pt[1])
			} else {
				ctx.LineTo(pt[0], pt[1])
			}
		}
		ctx.ClosePath()
	}
}

// prng is a Park-Miller minimal standard generator.
type prng struct {
	a, m, seed int
	div        float64
}

func newPrng() *prng {
	return &prng{a: 16807, m: 0x7fffffff, seed: 1, div: 1.0 / 0x7fffffff}
}

func (p *prng) next() float64 {
	lo := p.a * (p.seed & 0xffff)
	hi := p.a * (p.seed >> 16)
	lo += (hi & 0x7fff) << 16
	if lo > p.m {
		lo &= p.m
		lo++
	}
	lo += hi >> 15
	if lo > p.m {
		lo &= p.m
		lo++
	}
	p.seed = lo
	return float64(lo) * p.div
}

// Noise applies a grain of the given amount on the image.
func Noise(amount int, src image.Image) *image.NRGBA {
	img := ImgToNRGBA(src)
	dst := image.NewNRGBA(img.Bounds())
	rnd := newPrng()
	for i := 0; i+3 < len(img.Pix); i += 4 {
		n := (rnd.next() - 0.1) * float64(amount)
		r, g, b := float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])
		if math.Abs(r+n) < 255 && math.Abs(g+n) < 255 && math.Abs(b+n) < 255 {
			r, g, b = r+n, g+n, b+n
		}
		dst.Pix[i] = uint8(Min(Max(r, 0), 255))
		dst.Pix[i+1] = uint8(Min(Max(g, 0), 255))
		dst.Pix[i+2] = uint8(Min(Max(b, 0), 255))
		dst.Pix[i+3] = img.Pix[i+3]
	}
	return dst
}
