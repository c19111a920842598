// Package plan records drawings as flat move and line operations and
// implements their on-disk form.
package plan

import (
	"fmt"
	"image"

	"github.com/adishavit/linerun/plot"
)

type Kind uint8

const (
	MoveTo Kind = iota
	LineTo
)

// Op is a single pen operation.
type Op struct {
	Kind Kind
	P    image.Point
}

func (o Op) String() string {
	k := "M"
	if o.Kind == LineTo {
		k = "L"
	}
	return fmt.Sprintf("%s %d %d", k, o.P.X, o.P.Y)
}

// Plan is a recorded drawing. A Plan is itself a plot.Command and
// replays its operations in order.
type Plan []Op

func (pl Plan) Draw(p plot.Program) {
	for _, op := range pl {
		switch op.Kind {
		case MoveTo:
			p.Move(op.P)
		case LineTo:
			p.Line(op.P)
		}
	}
}

// Recorder is a plot.Program that appends every operation to a Plan.
type Recorder struct {
	Plan Plan
}

func (r *Recorder) Move(p image.Point) {
	r.Plan = append(r.Plan, Op{Kind: MoveTo, P: p})
}

func (r *Recorder) Line(p image.Point) {
	r.Plan = append(r.Plan, Op{Kind: LineTo, P: p})
}

// Record runs a command and returns its operations.
func Record(c plot.Command) Plan {
	r := new(Recorder)
	c.Draw(r)
	return r.Plan
}
