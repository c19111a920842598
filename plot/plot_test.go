package plot

import (
	"image"
	"math"
	"slices"
	"testing"
)

type testOp struct {
	move bool
	p    image.Point
}

type recordProgram struct {
	ops []testOp
}

func (r *recordProgram) Move(p image.Point) {
	r.ops = append(r.ops, testOp{move: true, p: p})
}

func (r *recordProgram) Line(p image.Point) {
	r.ops = append(r.ops, testOp{p: p})
}

func record(c Command) []testOp {
	r := new(recordProgram)
	c.Draw(r)
	return r.ops
}

func TestPolyline(t *testing.T) {
	if ops := record(Polyline{}); len(ops) != 0 {
		t.Errorf("empty polyline drew %v", ops)
	}
	line := Polyline{{0, 0}, {3, 1}, {3, 5}}
	want := []testOp{
		{move: true, p: image.Pt(0, 0)},
		{p: image.Pt(3, 1)},
		{p: image.Pt(3, 5)},
	}
	if ops := record(line); !slices.Equal(ops, want) {
		t.Errorf("polyline drew %v, expected %v", ops, want)
	}
}

func TestRect(t *testing.T) {
	ops := record(Rect(image.Rect(1, 2, 5, 7)))
	want := []testOp{
		{move: true, p: image.Pt(1, 2)},
		{p: image.Pt(5, 2)},
		{p: image.Pt(5, 7)},
		{p: image.Pt(1, 7)},
		{p: image.Pt(1, 2)},
	}
	if !slices.Equal(ops, want) {
		t.Errorf("rect drew %v, expected %v", ops, want)
	}
}

func TestTransforms(t *testing.T) {
	line := Polyline{{1, 0}, {3, 2}}
	tests := []struct {
		name string
		cmd  Command
		want []image.Point
	}{
		{"offset", Offset(10, -2, line), []image.Point{{11, -2}, {13, 0}}},
		{"rotate", Rotate(math.Pi/2, line), []image.Point{{0, 1}, {-2, 3}}},
		{"scale", Scale(3, line), []image.Point{{3, 0}, {9, 6}}},
		{"nested", Offset(1, 1, Scale(2, line)), []image.Point{{3, 1}, {7, 5}}},
	}
	for _, test := range tests {
		ops := record(test.cmd)
		if len(ops) != len(test.want) {
			t.Fatalf("%s drew %d ops, expected %d", test.name, len(ops), len(test.want))
		}
		for i, op := range ops {
			if op.p != test.want[i] {
				t.Errorf("%s drew %v, expected %v", test.name, op.p, test.want[i])
			}
		}
	}
}

func TestMeasure(t *testing.T) {
	if b := Measure(Commands{}); b != (image.Rectangle{}) {
		t.Errorf("empty command measured %v", b)
	}
	b := Measure(Polyline{{1, 2}, {4, 3}})
	if want := image.Rect(1, 2, 5, 4); b != want {
		t.Errorf("measured %v, expected %v", b, want)
	}
	b = Measure(Offset(-5, 0, Rect(image.Rect(0, 0, 2, 2))))
	if want := image.Rect(-5, 0, -2, 3); b != want {
		t.Errorf("measured %v, expected %v", b, want)
	}
}

// evalCube evaluates the cubic Bézier curve at t.
func evalCube(p0, p1, p2, p3 [2]float64, t float64) [2]float64 {
	u := 1 - t
	var q [2]float64
	for i := range q {
		q[i] = u*u*u*p0[i] + 3*u*u*t*p1[i] + 3*u*t*t*p2[i] + t*t*t*p3[i]
	}
	return q
}

func segDist(p, a, b [2]float64) float64 {
	abx, aby := b[0]-a[0], b[1]-a[1]
	apx, apy := p[0]-a[0], p[1]-a[1]
	l2 := abx*abx + aby*aby
	t := 0.0
	if l2 > 0 {
		t = (apx*abx + apy*aby) / l2
		t = math.Max(0, math.Min(1, t))
	}
	dx, dy := p[0]-(a[0]+t*abx), p[1]-(a[1]+t*aby)
	return math.Hypot(dx, dy)
}

func polyDist(p [2]float64, poly []image.Point) float64 {
	min := math.Inf(1)
	for i := 1; i < len(poly); i++ {
		a := [2]float64{float64(poly[i-1].X), float64(poly[i-1].Y)}
		b := [2]float64{float64(poly[i].X), float64(poly[i].Y)}
		if d := segDist(p, a, b); d < min {
			min = d
		}
	}
	return min
}

func TestCurve(t *testing.T) {
	c := Curve{
		P0: image.Pt(0, 0),
		P1: image.Pt(40, -30),
		P2: image.Pt(80, 60),
		P3: image.Pt(120, 0),
	}
	ops := record(c)
	if !ops[0].move || ops[0].p != c.P0 {
		t.Fatalf("curve started with %v", ops[0])
	}
	if last := ops[len(ops)-1]; last.move || last.p != c.P3 {
		t.Fatalf("curve ended with %v", last)
	}
	var poly []image.Point
	for _, op := range ops {
		poly = append(poly, op.p)
	}
	p0 := [2]float64{float64(c.P0.X), float64(c.P0.Y)}
	p1 := [2]float64{float64(c.P1.X), float64(c.P1.Y)}
	p2 := [2]float64{float64(c.P2.X), float64(c.P2.Y)}
	p3 := [2]float64{float64(c.P3.X), float64(c.P3.Y)}
	for i := 0; i <= 100; i++ {
		q := evalCube(p0, p1, p2, p3, float64(i)/100)
		if d := polyDist(q, poly); d > 1 {
			t.Errorf("curve point %v is %.2f from the flattened line", q, d)
		}
	}
}

func TestQuad(t *testing.T) {
	q := Quad{
		P0: image.Pt(0, 0),
		P1: image.Pt(50, 80),
		P2: image.Pt(100, 0),
	}
	ops := record(q)
	if !ops[0].move || ops[0].p != q.P0 {
		t.Fatalf("quad started with %v", ops[0])
	}
	if last := ops[len(ops)-1]; last.move || last.p != q.P2 {
		t.Fatalf("quad ended with %v", last)
	}
	var poly []image.Point
	for _, op := range ops {
		poly = append(poly, op.p)
	}
	for i := 0; i <= 100; i++ {
		tt := float64(i) / 100
		u := 1 - tt
		qt := [2]float64{
			2*u*tt*50 + tt*tt*100,
			2 * u * tt * 80,
		}
		if d := polyDist(qt, poly); d > 1 {
			t.Errorf("quad point %v is %.2f from the flattened line", qt, d)
		}
	}
}

func TestArc(t *testing.T) {
	a := Arc{
		Center:  image.Pt(0, 0),
		Start:   image.Pt(20, 0),
		Radians: math.Pi / 2,
	}
	ops := record(a)
	if !ops[0].move || ops[0].p != a.Start {
		t.Fatalf("arc started with %v", ops[0])
	}
	if last := ops[len(ops)-1].p; math.Hypot(float64(last.X), float64(last.Y-20)) > 1 {
		t.Errorf("arc ended at %v, expected near (0,20)", last)
	}
	for _, op := range ops {
		r := math.Hypot(float64(op.p.X), float64(op.p.Y))
		if math.Abs(r-20) > 1 {
			t.Errorf("arc point %v is at radius %.2f, expected 20", op.p, r)
		}
	}
	if ops := record(Arc{Center: image.Pt(5, 5), Start: image.Pt(5, 5), Radians: math.Pi}); len(ops) != 1 {
		t.Errorf("degenerate arc drew %v", ops)
	}
}
