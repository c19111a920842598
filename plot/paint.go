package plot

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/fixed"

	"github.com/adishavit/linerun/raster"
)

// Painter is a Program that draws into an image, one pixel per raster
// position. Segments are clipped to the image bounds.
type Painter struct {
	dst  draw.Image
	ink  color.Color
	clip image.Rectangle
	pos  image.Point
}

func NewPainter(dst draw.Image, ink color.Color) *Painter {
	return &Painter{
		dst:  dst,
		ink:  ink,
		clip: dst.Bounds().Canon(),
	}
}

func (pt *Painter) Move(p image.Point) {
	pt.pos = p
}

func (pt *Painter) Line(p image.Point) {
	run, err := raster.ClippedPoints(pt.pos, p, pt.clip)
	if err != nil {
		// The clip is canonical.
		panic(err)
	}
	for q := range run {
		pt.dst.Set(q.X, q.Y, pt.ink)
	}
	pt.pos = p
}

// Rasterizer is a Program that draws an anti-aliased stroked preview
// of a drawing into an image.
type Rasterizer struct {
	p       f32.Vec2
	started bool
	dasher  *rasterx.Dasher
	img     image.Image
	scale   float32
}

func NewRasterizer(img draw.Image, dr image.Rectangle, scale, strokeWidth float32) *Rasterizer {
	width, height := dr.Dx(), dr.Dy()
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	r := &Rasterizer{
		dasher: rasterx.NewDasher(width, height, scanner),
		img:    img,
		scale:  scale,
	}
	stroke := strokeWidth * 64
	r.dasher.SetStroke(fixed.Int26_6(stroke), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	r.dasher.SetColor(color.Black)
	return r
}

func (r *Rasterizer) Move(p image.Point) {
	if r.started {
		r.dasher.Stop(false)
		r.started = false
	}
	r.p = r.coord(p)
}

func (r *Rasterizer) Line(p image.Point) {
	if !r.started {
		r.dasher.Start(rasterx.ToFixedP(float64(r.p[0]), float64(r.p[1])))
		r.started = true
	}
	pf := r.coord(p)
	r.dasher.Line(rasterx.ToFixedP(float64(pf[0]), float64(pf[1])))
}

func (r *Rasterizer) coord(p image.Point) f32.Vec2 {
	return f32.Vec2{
		float32(p.X)*r.scale - float32(r.img.Bounds().Min.X),
		float32(p.Y)*r.scale - float32(r.img.Bounds().Min.Y),
	}
}

// Rasterize flushes the pending stroke and draws the accumulated
// paths.
func (r *Rasterizer) Rasterize() {
	if r.started {
		r.dasher.Stop(false)
	}
	r.dasher.Draw()
}
