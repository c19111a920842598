// package gpiostep implements a [motion.Device] on Raspberry Pi
// GPIO pins, bit-banging step pulses to the axis drivers and the
// pen lift.
package gpiostep

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/bcm283x"

	"github.com/adishavit/linerun/motion"
)

// Pins assigns gantry functions to GPIO pins.
type Pins struct {
	StepX, DirX gpio.PinOut
	StepY, DirY gpio.PinOut
	Pen         gpio.PinOut
}

// DefaultPins is the wiring of the plotter HAT.
var DefaultPins = Pins{
	StepX: bcm283x.GPIO12,
	DirX:  bcm283x.GPIO13,
	StepY: bcm283x.GPIO20,
	DirY:  bcm283x.GPIO21,
	Pen:   bcm283x.GPIO26,
}

const bufSize = 64

type Device struct {
	pins   Pins
	tick   time.Duration
	bufs   [2][]uint32
	active int
}

// Open initializes the GPIO host and configures the pins for
// output. TickHz is the step clock rate.
func Open(pins Pins, tickHz int) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	for _, p := range []gpio.PinOut{pins.StepX, pins.DirX, pins.StepY, pins.DirY, pins.Pen} {
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("gpiostep: %w", err)
		}
	}
	d := &Device{
		pins: pins,
		tick: time.Second / time.Duration(tickHz),
	}
	d.bufs[0] = make([]uint32, bufSize)
	d.bufs[1] = make([]uint32, bufSize)
	return d, nil
}

func (d *Device) NextBuffer() []uint32 {
	return d.bufs[d.active]
}

// Transfer clocks out packed steps. The direction and pen pins
// settle on the leading half tick while the step pins pulse.
func (d *Device) Transfer(steps int) {
	buf := d.bufs[d.active]
	d.active ^= 1
	for i := 0; i < steps; i++ {
		w := buf[i/motion.StepsPerWord]
		w >>= (i % motion.StepsPerWord) * motion.PinBits
		s := uint8(w & (0b1<<motion.PinBits - 1))
		level := func(bit int) gpio.Level {
			return gpio.Level((s>>bit)&0b1 == 0b1)
		}
		d.pins.DirX.Out(level(motion.PinDirX))
		d.pins.DirY.Out(level(motion.PinDirY))
		d.pins.Pen.Out(level(motion.PinPen))
		d.pins.StepX.Out(level(motion.PinStepX))
		d.pins.StepY.Out(level(motion.PinStepY))
		time.Sleep(d.tick / 2)
		d.pins.StepX.Out(gpio.Low)
		d.pins.StepY.Out(gpio.Low)
		time.Sleep(d.tick / 2)
	}
}

// Close lifts the pen and releases the step pins.
func (d *Device) Close() error {
	var firstErr error
	for _, p := range []gpio.PinOut{d.pins.StepX, d.pins.StepY, d.pins.Pen} {
		if err := p.Out(gpio.Low); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
