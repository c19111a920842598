package raster

import "image"

// Trace is a walk over every pixel the segment between the centers of
// two pixels passes through. Successive positions share an edge,
// except where the segment crosses a pixel corner exactly and the walk
// moves diagonally.
type Trace struct {
	// tmaxX, tmaxY measure the distance to the next pixel boundary
	// on each axis, scaled by twice the area of the line vector.
	tmaxX, tmaxY int
	// tdX, tdY is the scaled distance between boundaries.
	tdX, tdY     int
	stepX, stepY image.Point
	cur, next    image.Point
	end          image.Point
	started      bool
	done         bool
}

// NewTrace returns a walk over the pixels crossed by the segment from
// the center of p0 to the center of p1. The first position is p0 and
// the last p1.
func NewTrace(p0, p1 image.Point) *Trace {
	t := &Trace{cur: p0, next: p0, end: p1}
	dist := p1.Sub(p0)
	sx, sy := 1, 1
	if dist.X < 0 {
		sx = -1
		dist.X = -dist.X
	}
	if dist.Y < 0 {
		sy = -1
		dist.Y = -dist.Y
	}
	t.stepX, t.stepY = image.Pt(sx, 0), image.Pt(0, sy)
	t.tmaxX, t.tmaxY = dist.Y, dist.X
	t.tdX, t.tdY = 2*dist.Y, 2*dist.X
	return t
}

// Advance produces the next position of the walk. It returns
// ErrInvalidState if the walk is exhausted.
func (t *Trace) Advance() error {
	if t.done {
		return ErrInvalidState
	}
	t.advance()
	return nil
}

// At returns the position most recently produced by Advance. It
// returns ErrInvalidState if no position has been produced.
func (t *Trace) At() (image.Point, error) {
	if !t.started {
		return image.Point{}, ErrInvalidState
	}
	return t.cur, nil
}

// Done reports whether the walk is exhausted.
func (t *Trace) Done() bool {
	return t.done
}

func (t *Trace) advance() {
	t.cur = t.next
	t.started = true
	if t.cur == t.end {
		t.done = true
		return
	}
	switch {
	case t.tmaxX < t.tmaxY:
		t.tmaxX += t.tdX
		t.next = t.next.Add(t.stepX)
	case t.tmaxY < t.tmaxX:
		t.tmaxY += t.tdY
		t.next = t.next.Add(t.stepY)
	default:
		// The segment crosses a pixel corner.
		t.tmaxX += t.tdX
		t.tmaxY += t.tdY
		t.next = t.next.Add(t.stepX).Add(t.stepY)
	}
}

// Cells returns the pixels crossed by the segment from the center of
// p0 to the center of p1 as a Run.
func Cells(p0, p1 image.Point) Run {
	t := NewTrace(p0, p1)
	return func(yield func(image.Point) bool) {
		for !t.done {
			t.advance()
			if !yield(t.cur) {
				return
			}
		}
	}
}
