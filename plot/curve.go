package plot

import (
	"image"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/adishavit/linerun/affine"
)

// Curve draws a cubic Bézier curve from P0 to P3 with control points
// P1 and P2.
type Curve struct {
	P0, P1, P2, P3 image.Point
}

func (c Curve) Draw(p Program) {
	p.Move(c.P0)
	approxCubeBezier(p.Line, affine.Pointf(c.P0), affine.Pointf(c.P1), affine.Pointf(c.P2), affine.Pointf(c.P3))
}

// Quad draws a quadratic Bézier curve from P0 to P2 with control
// point P1.
type Quad struct {
	P0, P1, P2 image.Point
}

func (q Quad) Draw(p Program) {
	p0, p12, p2 := affine.Pointf(q.P0), affine.Pointf(q.P1), affine.Pointf(q.P2)
	p.Move(q.P0)
	// Expand to cubic.
	approxCubeBezier(p.Line, p0, mix(p12, p0, 1.0/3.0), mix(p12, p2, 1.0/3.0), p2)
}

// Arc draws a circular arc around Center, starting at Start and
// sweeping by Radians. Positive sweeps run clockwise in image
// coordinates.
type Arc struct {
	Center  image.Point
	Start   image.Point
	Radians float64
}

func (a Arc) Draw(p Program) {
	p.Move(a.Start)
	c := affine.Pointf(a.Center)
	v := affine.Sub(affine.Pointf(a.Start), c)
	r := float64(affine.Length(v))
	if r == 0 || a.Radians == 0 {
		return
	}
	// Chord angle for the flatness tolerance, clamped for radii so
	// small that any chord is flat enough.
	const tolerance = .2
	step := math.Pi / 2
	if h := 1 - tolerance/r; h > -1 {
		step = 2 * math.Acos(h)
	}
	n := int(math.Ceil(math.Abs(a.Radians) / step))
	a0 := math.Atan2(float64(v[1]), float64(v[0]))
	for i := 1; i <= n; i++ {
		sin, cos := math.Sincos(a0 + a.Radians*float64(i)/float64(n))
		q := affine.Add(c, affine.Scale(f32.Vec2{float32(cos), float32(sin)}, float32(r)))
		p.Line(roundCoord(q))
	}
}

func roundCoord(p f32.Vec2) image.Point {
	return image.Point{
		X: int(math.Round(float64(p[0]))),
		Y: int(math.Round(float64(p[1]))),
	}
}

// approxCubeBezier uses de Casteljau subdivision to approximate a cubic Bézier
// curve with line segments.
//
// See "Piecewise Linear Approximation of Bézier Curves" by Kaspar Fischer, October 16, 2000,
// http://citeseerx.ist.psu.edu/viewdoc/download?doi=10.1.1.86.162&rep=rep1&type=pdf.
func approxCubeBezier(move func(to image.Point), p0, p1, p2, p3 f32.Vec2) {
	if isFlat(p0, p1, p2, p3) {
		move(roundCoord(p3))
	} else {
		l0, l1, l2, l3 := subdivideCubeBezier(0, .5, p0, p1, p2, p3)
		approxCubeBezier(move, l0, l1, l2, l3)
		r0, r1, r2, r3 := subdivideCubeBezier(.5, 1, p0, p1, p2, p3)
		approxCubeBezier(move, r0, r1, r2, r3)
	}
}

func subdivideCubeBezier(t0, t1 float32, p0, p1, p2, p3 f32.Vec2) (s0, s1, s2, s3 f32.Vec2) {
	u0 := 1 - t0
	u1 := 1 - t1
	s0[0] = u0*u0*u0*p0[0] + (t0*u0*u0+u0*t0*u0+u0*u0*t0)*p1[0] + (t0*t0*u0+u0*t0*t0+t0*u0*t0)*p2[0] + t0*t0*t0*p3[0]
	s0[1] = u0*u0*u0*p0[1] + (t0*u0*u0+u0*t0*u0+u0*u0*t0)*p1[1] + (t0*t0*u0+u0*t0*t0+t0*u0*t0)*p2[1] + t0*t0*t0*p3[1]
	s1[0] = u0*u0*u1*p0[0] + (t0*u0*u1+u0*t0*u1+u0*u0*t1)*p1[0] + (t0*t0*u1+u0*t0*t1+t0*u0*t1)*p2[0] + t0*t0*t1*p3[0]
	s1[1] = u0*u0*u1*p0[1] + (t0*u0*u1+u0*t0*u1+u0*u0*t1)*p1[1] + (t0*t0*u1+u0*t0*t1+t0*u0*t1)*p2[1] + t0*t0*t1*p3[1]
	s2[0] = u0*u1*u1*p0[0] + (t0*u1*u1+u0*t1*u1+u0*u1*t1)*p1[0] + (t0*t1*u1+u0*t1*t1+t0*u1*t1)*p2[0] + t0*t1*t1*p3[0]
	s2[1] = u0*u1*u1*p0[1] + (t0*u1*u1+u0*t1*u1+u0*u1*t1)*p1[1] + (t0*t1*u1+u0*t1*t1+t0*u1*t1)*p2[1] + t0*t1*t1*p3[1]
	s3[0] = u1*u1*u1*p0[0] + (t1*u1*u1+u1*t1*u1+u1*u1*t1)*p1[0] + (t1*t1*u1+u1*t1*t1+t1*u1*t1)*p2[0] + t1*t1*t1*p3[0]
	s3[1] = u1*u1*u1*p0[1] + (t1*u1*u1+u1*t1*u1+u1*u1*t1)*p1[1] + (t1*t1*u1+u1*t1*t1+t1*u1*t1)*p2[1] + t1*t1*t1*p3[1]
	return
}

func isFlat(p0, p1, p2, p3 f32.Vec2) bool {
	const tolerance = .2
	ux := 3.0*p1[0] - 2.0*p0[0] - p3[0]
	uy := 3.0*p1[1] - 2.0*p0[1] - p3[1]
	vx := 3.0*p2[0] - 2.0*p3[0] - p0[0]
	vy := 3.0*p2[1] - 2.0*p3[1] - p0[1]
	ux *= ux
	uy *= uy
	vx *= vx
	vy *= vy
	if ux < vx {
		ux = vx
	}
	if uy < vy {
		uy = vy
	}
	return ux+uy <= 16*tolerance*tolerance
}

func mix(p1, p2 f32.Vec2, a float32) f32.Vec2 {
	return affine.Add(affine.Scale(p1, 1.-a), affine.Scale(p2, a))
}
