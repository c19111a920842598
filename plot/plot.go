// Package plot transforms shapes such as polylines, arcs and QR codes
// into line and move commands for use with a plotter.
package plot

import (
	"image"
	"math"
)

type Command interface {
	Draw(p Program)
}

type Commands []Command

func (c Commands) Draw(p Program) {
	for _, c := range c {
		c.Draw(p)
	}
}

// Program is an interface to output a drawing.
type Program interface {
	Move(p image.Point)
	Line(p image.Point)
}

type transformedProgram struct {
	prog  Program
	trans transform
}

func (t *transformedProgram) Move(p image.Point) {
	t.prog.Move(t.trans.transform(p))
}

func (t *transformedProgram) Line(p image.Point) {
	t.prog.Line(t.trans.transform(p))
}

type transform [6]int

func (m transform) transform(p image.Point) image.Point {
	return image.Point{
		X: p.X*m[0] + p.Y*m[1] + m[2],
		Y: p.X*m[3] + p.Y*m[4] + m[5],
	}
}

type transformCmd struct {
	t   transform
	cmd Command
}

func (t transformCmd) Draw(p Program) {
	t.cmd.Draw(&transformedProgram{
		prog:  p,
		trans: t.t,
	})
}

func Offset(x, y int, cmd Command) Command {
	return transformCmd{
		t: transform{
			1, 0, x,
			0, 1, y,
		},
		cmd: cmd,
	}
}

// Rotate rotates a command around the origin. The angle is rounded to
// a quarter turn to keep coordinates integral.
func Rotate(radians float64, cmd Command) Command {
	sin, cos := math.Sincos(radians)
	s, c := int(math.Round(sin)), int(math.Round(cos))
	return transformCmd{
		t: transform{
			c, -s, 0,
			s, c, 0,
		},
		cmd: cmd,
	}
}

func Scale(s int, cmd Command) Command {
	return transformCmd{
		t: transform{
			s, 0, 0,
			0, s, 0,
		},
		cmd: cmd,
	}
}

// Polyline draws connected line segments through its points.
type Polyline []image.Point

func (l Polyline) Draw(p Program) {
	if len(l) == 0 {
		return
	}
	p.Move(l[0])
	for _, q := range l[1:] {
		p.Line(q)
	}
}

type Rect image.Rectangle

func (r Rect) Draw(p Program) {
	p.Move(r.Min)
	p.Line(image.Pt(r.Max.X, r.Min.Y))
	p.Line(r.Max)
	p.Line(image.Pt(r.Min.X, r.Max.Y))
	p.Line(r.Min)
}

type measureProgram struct {
	bounds image.Rectangle
	seen   bool
}

func (m *measureProgram) Move(p image.Point) {
	m.add(p)
}

func (m *measureProgram) Line(p image.Point) {
	m.add(p)
}

func (m *measureProgram) add(p image.Point) {
	r := image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}
	if !m.seen {
		m.bounds, m.seen = r, true
		return
	}
	m.bounds = m.bounds.Union(r)
}

// Measure returns the bounding rectangle of the positions a command
// visits, or the zero rectangle for a command that draws nothing.
func Measure(c Command) image.Rectangle {
	var m measureProgram
	c.Draw(&m)
	return m.bounds
}
