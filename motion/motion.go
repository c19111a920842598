// package motion converts plans into step pulse streams for
// two-axis stepper gantries.
package motion

import (
	"image"
	"iter"

	"github.com/adishavit/linerun/plan"
	"github.com/adishavit/linerun/raster"
)

// Device consumes buffers of packed step words, such as a GPIO
// bit-banger or a DMA-fed FIFO.
type Device interface {
	NextBuffer() []uint32
	Transfer(steps int)
}

// Mode selects the step geometry of the gantry.
type Mode uint8

const (
	// EightWay permits simultaneous steps on both axes.
	EightWay Mode = iota
	// FourWay steps one axis per tick and visits every cell the
	// pen crosses.
	FourWay
)

const (
	PinBits = 5
	// StepsPerWord is the number of steps that fit into a 32-bit
	// FIFO entry.
	StepsPerWord = 32 / PinBits
)

// Pin offsets from the device base pin, one bit per pin within each
// step group.
const (
	PinDirY = iota
	PinDirX
	PinPen
	PinStepY
	PinStepX
)

// Driver clocks plans out to a Device, one buffer at a time.
type Driver struct {
	dev  Device
	quit <-chan struct{}
	buf  []uint32
	idx  int
}

func NewDriver(d Device, quit <-chan struct{}) *Driver {
	return &Driver{
		dev:  d,
		quit: quit,
		buf:  d.NextBuffer(),
	}
}

// Run steps through p until the plan completes or quit is closed.
// It returns with the device mid-plan on quit.
func (d *Driver) Run(mode Mode, p plan.Plan) {
	for t := range ticks(mode, p) {
		select {
		case <-d.quit:
			return
		default:
		}
		d.push(pins(t))
		if d.full() {
			d.flush()
		}
	}
	if d.idx > 0 {
		d.flush()
	}
}

func (d *Driver) push(pins uint8) {
	idx := d.idx / StepsPerWord
	stepIdx := d.idx % StepsPerWord
	w := d.buf[idx]
	if stepIdx == 0 {
		w = 0
	}
	w |= uint32(pins) << (stepIdx * PinBits)
	d.buf[idx] = w
	d.idx++
}

func (d *Driver) full() bool {
	return d.idx == len(d.buf)*StepsPerWord
}

func (d *Driver) flush() {
	steps := d.idx
	d.idx = 0
	d.dev.Transfer(steps)
	d.buf = d.dev.NextBuffer()
}

// tick is one timer period of gantry motion. Each axis of d is a
// unit step or zero.
type tick struct {
	d   image.Point
	pen bool
}

func pins(t tick) uint8 {
	var p uint8
	switch t.d.X {
	case -1:
		p |= 0b1<<PinStepX | 0b1<<PinDirX
	case 1:
		p |= 0b1<<PinStepX | 0b0<<PinDirX
	}
	switch t.d.Y {
	case -1:
		p |= 0b1<<PinStepY | 0b1<<PinDirY
	case 1:
		p |= 0b1<<PinStepY | 0b0<<PinDirY
	}
	if t.pen {
		p |= 0b1 << PinPen
	}
	return p
}

// ticks lazily flattens p into per-tick unit steps.
func ticks(mode Mode, p plan.Plan) iter.Seq[tick] {
	return func(yield func(tick) bool) {
		pos := image.Point{}
		for _, op := range p {
			pen := op.Kind == plan.LineTo
			if op.P == pos {
				// A zero length draw holds the pen down for
				// one tick to mark a dot.
				if pen && !yield(tick{pen: true}) {
					return
				}
				continue
			}
			run := raster.Points(pos, op.P)
			if mode == FourWay {
				run = raster.Cells(pos, op.P)
			}
			first := true
			for q := range run {
				if first {
					first = false
					continue
				}
				step := q.Sub(pos)
				if mode == FourWay && step.X != 0 && step.Y != 0 {
					// A corner crossing becomes two ticks.
					if !yield(tick{d: image.Pt(step.X, 0), pen: pen}) {
						return
					}
					if !yield(tick{d: image.Pt(0, step.Y), pen: pen}) {
						return
					}
				} else if !yield(tick{d: step, pen: pen}) {
					return
				}
				pos = q
			}
		}
	}
}
