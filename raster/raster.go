// Package raster implements pixel walks over line segments.
//
// A Line produces the positions of the 8-connected raster of a segment
// one at a time, in order from start to end. A Trace produces every
// pixel the segment between two pixel centers passes through. Both are
// single use: they advance forward only and cannot be restarted.
package raster

import (
	"errors"
	"image"
	"iter"
)

// ErrInvalidState reports an advance past the end of a walk, or a
// position read before the first advance.
var ErrInvalidState = errors.New("invalid generator state")

// ErrInvalidClip reports a clip rectangle with negative extent.
var ErrInvalidClip = errors.New("invalid clip rectangle")

// Run is a sequence of pixel positions. A Run is backed by a single
// walk and yields each position once.
type Run = iter.Seq[image.Point]

// Line is a walk over the 8-connected raster of a segment. Every
// position differs from its predecessor by one step along the dominant
// axis and at most one step along the other.
type Line struct {
	// d is the minor axis error, doubled.
	d int
	// dmajor, dminor is the absolute line vector, dominant axis first.
	dmajor, dminor int
	// major, minor are the pixel steps along each axis.
	major, minor image.Point
	// up is whether a minor step increases its coordinate. Error
	// ties break toward increasing coordinates so that a walk and
	// its reversal cover the same pixels.
	up bool
	// cur is the position most recently produced, next the position
	// the following Advance will produce.
	cur, next image.Point
	// rem counts the positions not yet produced.
	rem     int
	started bool
	clip    image.Rectangle
	clipped bool
}

// NewLine returns a walk over the raster of the segment from p0 to p1.
// The walk produces max(|Δx|, |Δy|)+1 positions, the first p0 and the
// last p1.
func NewLine(p0, p1 image.Point) *Line {
	l := &Line{cur: p0, next: p0}
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
	l.major, l.minor = image.Pt(sx, 0), image.Pt(0, sy)
	if dist.Y > dist.X {
		dist.X, dist.Y = dist.Y, dist.X
		l.major, l.minor = image.Pt(0, sy), image.Pt(sx, 0)
	}
	l.dmajor, l.dminor = dist.X, dist.Y
	l.d = 2*l.dminor - l.dmajor
	l.up = l.minor.X+l.minor.Y > 0
	l.rem = l.dmajor + 1
	return l
}

// NewClippedLine returns a walk over the positions of the segment
// raster that lie inside clip, which follows the image.Rectangle
// convention of an inclusive Min and exclusive Max. A clip with
// negative extent returns ErrInvalidClip. A walk with no positions
// inside clip is exhausted on return.
func NewClippedLine(p0, p1 image.Point, clip image.Rectangle) (*Line, error) {
	if clip.Min.X > clip.Max.X || clip.Min.Y > clip.Max.Y {
		return nil, ErrInvalidClip
	}
	l := NewLine(p0, p1)
	l.clip, l.clipped = clip, true
	bounds := image.Rectangle{Min: p0, Max: p1}.Canon()
	bounds.Max = bounds.Max.Add(image.Pt(1, 1))
	if !bounds.Overlaps(clip) {
		l.rem = 0
		return l, nil
	}
	for l.rem > 0 && !l.next.In(clip) {
		l.rem--
		if l.rem > 0 {
			l.step()
		}
	}
	return l, nil
}

// Advance produces the next position of the walk. It returns
// ErrInvalidState if the walk is exhausted.
func (l *Line) Advance() error {
	if l.rem == 0 {
		return ErrInvalidState
	}
	l.advance()
	return nil
}

// At returns the position most recently produced by Advance. It
// returns ErrInvalidState if no position has been produced.
func (l *Line) At() (image.Point, error) {
	if !l.started {
		return image.Point{}, ErrInvalidState
	}
	return l.cur, nil
}

// Done reports whether the walk is exhausted. It is valid in every
// state.
func (l *Line) Done() bool {
	return l.rem == 0
}

func (l *Line) advance() {
	l.cur = l.next
	l.started = true
	l.rem--
	if l.rem == 0 {
		return
	}
	l.step()
	// Both coordinates are monotonic, so the first position outside
	// the clip ends the walk.
	if l.clipped && !l.next.In(l.clip) {
		l.rem = 0
	}
}

func (l *Line) step() {
	if l.d > 0 || l.d == 0 && l.up {
		l.d -= 2 * l.dmajor
		l.next = l.next.Add(l.minor)
	}
	l.d += 2 * l.dminor
	l.next = l.next.Add(l.major)
}

func (l *Line) run() Run {
	return func(yield func(image.Point) bool) {
		for l.rem > 0 {
			l.advance()
			if !yield(l.cur) {
				return
			}
		}
	}
}

// Points returns the raster of the segment from p0 to p1 as a Run.
func Points(p0, p1 image.Point) Run {
	return NewLine(p0, p1).run()
}

// ClippedPoints returns the raster positions of the segment from p0 to
// p1 inside clip as a Run.
func ClippedPoints(p0, p1 image.Point, clip image.Rectangle) (Run, error) {
	l, err := NewClippedLine(p0, p1, clip)
	if err != nil {
		return nil, err
	}
	return l.run(), nil
}
