// package hpgl implements a driver for HP-GL compatible pen
// plotters connected over a serial port.
package hpgl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/tarm/serial"

	"github.com/adishavit/linerun/plan"
)

// Options configure a plot.
type Options struct {
	// Pen is the pen carousel slot, starting at 1. Zero selects
	// slot 1.
	Pen int
	// Speed is the pen velocity in cm/s for the VS instruction.
	// Zero keeps the device default.
	Speed float32
}

// ErrAborted is reported by Plot when the quit channel is closed
// before the plot completes.
var ErrAborted = errors.New("aborted")

const (
	// esc prefixes device control instructions. They bypass the
	// plotter's instruction parser and buffer.
	esc = "\x1b."

	// chunkSize bounds the instruction bytes sent between buffer
	// queries. It must not exceed the smallest device buffer.
	chunkSize = 256

	defaultBaudRate = 9600
)

func Open(dev string, baud int) (io.ReadWriteCloser, error) {
	if baud == 0 {
		baud = defaultBaudRate
	}
	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3")
		case "linux":
			devices = append(devices, "/dev/ttyUSB0", "/dev/ttyACM0")
		case "darwin":
			devices = append(devices, "/dev/tty.usbserial")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("no device specified")
	}
	var firstErr error
	for _, dev := range devices {
		c := &serial.Config{Name: dev, Baud: baud}
		s, err := serial.OpenPort(c)
		if err == nil {
			return s, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Plot streams p to the plotter on dev. Output is paced with the
// ESC.B free buffer query so the device buffer is never overrun.
// Progress, when not nil, receives completion ratios in [0;1]; stale
// values are dropped when the receiver lags. Closing quit flushes the
// device buffer and reports ErrAborted.
func Plot(dev io.ReadWriter, p plan.Plan, opts Options, progress chan float32, quit <-chan struct{}) (perr error) {
	cmds := instructions(p, opts)
	done := make(chan struct{})
	defer close(done)
	writeMut := make(chan struct{}, 1)
	writeMut <- struct{}{}
	aborted := make(chan struct{})
	go func() {
		select {
		case <-quit:
			<-writeMut
			// The device discards its buffer along with the
			// rest of the plot.
			dev.Write([]byte(esc + "K"))
			writeMut <- struct{}{}
			close(aborted)
		case <-done:
		}
	}()
	send := func(s string) {
		if perr != nil {
			return
		}
		<-writeMut
		defer func() { writeMut <- struct{}{} }()
		_, perr = io.WriteString(dev, s)
	}
	rbuf := bufio.NewReaderSize(dev, 16)
	// free queries the device for its free buffer space.
	free := func() int {
		send(esc + "B")
		if perr != nil {
			return 0
		}
		reply, err := rbuf.ReadString('\r')
		if err != nil {
			perr = fmt.Errorf("hpgl: buffer query: %w", err)
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(reply))
		if err != nil {
			perr = fmt.Errorf("hpgl: buffer reply %q", reply)
			return 0
		}
		return n
	}
	sent := 0
	for sent < len(cmds) && perr == nil {
		select {
		case <-quit:
			<-aborted
			return ErrAborted
		default:
		}
		var chunk strings.Builder
		n := 0
		for _, c := range cmds[sent:] {
			if n > 0 && chunk.Len()+len(c) > chunkSize {
				break
			}
			chunk.WriteString(c)
			n++
		}
		for perr == nil && free() < chunk.Len() {
		}
		send(chunk.String())
		sent += n
		if progress != nil {
			select {
			case <-progress:
			default:
			}
			progress <- float32(sent) / float32(len(cmds))
		}
	}
	return perr
}

// instructions flattens p into HP-GL instructions, bracketed by
// initialization and a final return to the origin.
func instructions(p plan.Plan, opts Options) []string {
	pen := opts.Pen
	if pen <= 0 {
		pen = 1
	}
	cmds := []string{"IN;", fmt.Sprintf("SP%d;", pen)}
	if opts.Speed > 0 {
		cmds = append(cmds, fmt.Sprintf("VS%g;", opts.Speed))
	}
	for _, op := range p {
		switch op.Kind {
		case plan.MoveTo:
			cmds = append(cmds, fmt.Sprintf("PU%d,%d;", op.P.X, op.P.Y))
		case plan.LineTo:
			cmds = append(cmds, fmt.Sprintf("PD%d,%d;", op.P.X, op.P.Y))
		}
	}
	return append(cmds, "PU0,0;", "SP0;")
}
