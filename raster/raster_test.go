package raster

import (
	"errors"
	"image"
	"slices"
	"testing"
)

func walk(t *testing.T, l *Line) []image.Point {
	t.Helper()
	var pts []image.Point
	for !l.Done() {
		if err := l.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
		p, err := l.At()
		if err != nil {
			t.Fatalf("At: %v", err)
		}
		pts = append(pts, p)
	}
	return pts
}

func TestLine(t *testing.T) {
	tests := []struct {
		p0, p1 image.Point
		want   []image.Point
	}{
		{image.Pt(0, 0), image.Pt(3, 1), []image.Point{{0, 0}, {1, 0}, {2, 1}, {3, 1}}},
		{image.Pt(3, 1), image.Pt(0, 0), []image.Point{{3, 1}, {2, 1}, {1, 0}, {0, 0}}},
		{image.Pt(2, 2), image.Pt(2, 2), []image.Point{{2, 2}}},
		{image.Pt(0, 0), image.Pt(0, 3), []image.Point{{0, 0}, {0, 1}, {0, 2}, {0, 3}}},
		{image.Pt(0, 0), image.Pt(-3, 0), []image.Point{{0, 0}, {-1, 0}, {-2, 0}, {-3, 0}}},
		{image.Pt(0, 0), image.Pt(3, 3), []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{image.Pt(0, 0), image.Pt(-3, -1), []image.Point{{0, 0}, {-1, 0}, {-2, -1}, {-3, -1}}},
		// The error term ties halfway between rows and rounds up.
		{image.Pt(0, 0), image.Pt(2, 1), []image.Point{{0, 0}, {1, 1}, {2, 1}}},
		{image.Pt(2, 1), image.Pt(0, 0), []image.Point{{2, 1}, {1, 1}, {0, 0}}},
		{image.Pt(0, 0), image.Pt(2, -1), []image.Point{{0, 0}, {1, 0}, {2, -1}}},
		{image.Pt(2, -1), image.Pt(0, 0), []image.Point{{2, -1}, {1, 0}, {0, 0}}},
	}
	for _, test := range tests {
		got := walk(t, NewLine(test.p0, test.p1))
		if !slices.Equal(got, test.want) {
			t.Errorf("%v-%v walked %v, expected %v", test.p0, test.p1, got, test.want)
		}
	}
}

func TestLineInvariants(t *testing.T) {
	dists := []image.Point{
		image.Pt(0, 0),
		image.Pt(0, 1),
		image.Pt(1, 0),
		image.Pt(1, 1),
		image.Pt(1, 100),
		image.Pt(100, 1),
		image.Pt(100, 0),
		image.Pt(1000, 50),
		image.Pt(20, 50),
	}
	dirs := []image.Point{
		image.Pt(1, 1),
		image.Pt(-1, 1),
		image.Pt(1, -1),
		image.Pt(-1, -1),
	}
	p0 := image.Pt(7, -3)
	for _, dir := range dirs {
		for _, dist := range dists {
			p1 := p0.Add(image.Pt(dist.X*dir.X, dist.Y*dir.Y))
			pts := walk(t, NewLine(p0, p1))
			checkRaster(t, p0, p1, pts)
		}
	}
}

// checkRaster checks the walk length, its endpoints and that every
// step moves one pixel along the dominant axis and at most one along
// the other.
func checkRaster(t *testing.T, p0, p1 image.Point, pts []image.Point) {
	t.Helper()
	dabs := p1.Sub(p0)
	if dabs.X < 0 {
		dabs.X = -dabs.X
	}
	if dabs.Y < 0 {
		dabs.Y = -dabs.Y
	}
	if want := max(dabs.X, dabs.Y) + 1; len(pts) != want {
		t.Errorf("%v-%v walked %d positions, expected %d", p0, p1, len(pts), want)
	}
	if pts[0] != p0 || pts[len(pts)-1] != p1 {
		t.Errorf("%v-%v walked %v-%v", p0, p1, pts[0], pts[len(pts)-1])
	}
	for i := 1; i < len(pts); i++ {
		step := pts[i].Sub(pts[i-1])
		sabs := step
		if sabs.X < 0 {
			sabs.X = -sabs.X
		}
		if sabs.Y < 0 {
			sabs.Y = -sabs.Y
		}
		major, minor := sabs.X, sabs.Y
		if dabs.Y > dabs.X {
			major, minor = minor, major
		}
		if major != 1 || minor > 1 {
			t.Fatalf("%v-%v step %d moves %v", p0, p1, i, step)
		}
	}
}

func TestLineReversal(t *testing.T) {
	ends := []image.Point{
		image.Pt(0, 0),
		image.Pt(3, 1),
		image.Pt(2, 1),
		image.Pt(4, 2),
		image.Pt(-4, 2),
		image.Pt(7, -4),
		image.Pt(5, 11),
		image.Pt(-6, -14),
		image.Pt(100, 37),
		image.Pt(36, -100),
	}
	p0 := image.Pt(1, 2)
	for _, end := range ends {
		p1 := p0.Add(end)
		fwd := walk(t, NewLine(p0, p1))
		rev := walk(t, NewLine(p1, p0))
		slices.Reverse(rev)
		if !slices.Equal(fwd, rev) {
			t.Errorf("%v-%v walked %v, reverse walked %v", p0, p1, fwd, rev)
		}
	}
}

func TestLineStates(t *testing.T) {
	l := NewLine(image.Pt(0, 0), image.Pt(1, 0))
	if _, err := l.At(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("At before the first Advance: %v, expected ErrInvalidState", err)
	}
	if l.Done() {
		t.Error("Done before the first Advance")
	}
	for i := 0; i < 2; i++ {
		if err := l.Advance(); err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
	}
	if !l.Done() {
		t.Error("not Done after the last position")
	}
	if p, err := l.At(); err != nil || p != image.Pt(1, 0) {
		t.Errorf("At after the last position: %v, %v", p, err)
	}
	if err := l.Advance(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Advance past the end: %v, expected ErrInvalidState", err)
	}
	if p, err := l.At(); err != nil || p != image.Pt(1, 0) {
		t.Errorf("At after a failed Advance: %v, %v", p, err)
	}
}

func TestClippedLine(t *testing.T) {
	tests := []struct {
		p0, p1 image.Point
		clip   image.Rectangle
	}{
		{image.Pt(0, 0), image.Pt(10, 4), image.Rect(0, 0, 11, 5)},
		{image.Pt(0, 0), image.Pt(10, 4), image.Rect(3, 0, 7, 5)},
		{image.Pt(0, 0), image.Pt(10, 4), image.Rect(0, 2, 11, 3)},
		{image.Pt(10, 4), image.Pt(0, 0), image.Rect(3, 1, 7, 4)},
		{image.Pt(-5, -5), image.Pt(5, 5), image.Rect(0, 0, 3, 3)},
		{image.Pt(0, 0), image.Pt(10, 4), image.Rect(20, 20, 30, 30)},
		{image.Pt(0, 0), image.Pt(10, 4), image.Rect(5, 2, 5, 2)},
		{image.Pt(2, 2), image.Pt(2, 2), image.Rect(0, 0, 5, 5)},
		{image.Pt(2, 2), image.Pt(2, 2), image.Rect(3, 3, 5, 5)},
		{image.Pt(0, 0), image.Pt(10, 0), image.Rect(4, 0, 5, 1)},
	}
	for _, test := range tests {
		l, err := NewClippedLine(test.p0, test.p1, test.clip)
		if err != nil {
			t.Fatalf("%v-%v clip %v: %v", test.p0, test.p1, test.clip, err)
		}
		got := walk(t, l)
		var want []image.Point
		for _, p := range walk(t, NewLine(test.p0, test.p1)) {
			if p.In(test.clip) {
				want = append(want, p)
			}
		}
		if !slices.Equal(got, want) {
			t.Errorf("%v-%v clip %v walked %v, expected %v", test.p0, test.p1, test.clip, got, want)
		}
	}
}

func TestClippedLineInvalid(t *testing.T) {
	clips := []image.Rectangle{
		{Min: image.Pt(3, 0), Max: image.Pt(0, 3)},
		{Min: image.Pt(0, 3), Max: image.Pt(3, 0)},
	}
	for _, clip := range clips {
		if _, err := NewClippedLine(image.Pt(0, 0), image.Pt(5, 5), clip); !errors.Is(err, ErrInvalidClip) {
			t.Errorf("clip %v: %v, expected ErrInvalidClip", clip, err)
		}
	}
}

func TestClippedLineEmpty(t *testing.T) {
	l, err := NewClippedLine(image.Pt(0, 0), image.Pt(10, 4), image.Rect(20, 20, 30, 30))
	if err != nil {
		t.Fatal(err)
	}
	if !l.Done() {
		t.Error("not Done for a fully clipped walk")
	}
	if _, err := l.At(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("At on a fully clipped walk: %v, expected ErrInvalidState", err)
	}
	if err := l.Advance(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Advance on a fully clipped walk: %v, expected ErrInvalidState", err)
	}
}

func TestPoints(t *testing.T) {
	want := walk(t, NewLine(image.Pt(0, 0), image.Pt(5, 3)))
	run := Points(image.Pt(0, 0), image.Pt(5, 3))
	var got []image.Point
	for p := range run {
		got = append(got, p)
		if len(got) == 2 {
			break
		}
	}
	// A run resumes after a break and never restarts.
	got = append(got, slices.Collect(run)...)
	if !slices.Equal(got, want) {
		t.Errorf("run yielded %v, expected %v", got, want)
	}
	if rest := slices.Collect(run); len(rest) > 0 {
		t.Errorf("exhausted run yielded %v", rest)
	}
}

func FuzzLine(f *testing.F) {
	f.Add(0, 0, 3, 1)
	f.Add(2, 2, 2, 2)
	f.Add(-5, 3, 10, -4)
	f.Add(1, 2, 3, 4)
	f.Fuzz(func(t *testing.T, x0, y0, x1, y1 int) {
		const lim = 1 << 12
		for _, v := range []int{x0, y0, x1, y1} {
			if v < -lim || v > lim {
				return
			}
		}
		p0, p1 := image.Pt(x0, y0), image.Pt(x1, y1)
		fwd := walk(t, NewLine(p0, p1))
		checkRaster(t, p0, p1, fwd)
		rev := walk(t, NewLine(p1, p0))
		slices.Reverse(rev)
		if !slices.Equal(fwd, rev) {
			t.Fatalf("%v-%v walked %v, reverse walked %v", p0, p1, fwd, rev)
		}
	})
}
