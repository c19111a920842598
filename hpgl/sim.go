package hpgl

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/adishavit/linerun/plan"
)

// Simulator is an in-process HP-GL device for tests. Its goroutine
// serves one request at a time, the way a serial port serializes
// transfers.
type Simulator struct {
	pending  []byte
	reply    []byte
	buffered int
	penDown  bool

	// Ops are the pen movements executed so far.
	Ops plan.Plan
	// Aborted reports whether the device received ESC.K.
	Aborted bool

	close chan struct{}
	in    chan ioRequest
	out   chan ioResult
}

type ioRequest struct {
	write bool
	data  []byte
}

type ioResult struct {
	bytes int
	err   error
}

// The simulated device buffer, and the bytes the device retires
// between consecutive buffer queries.
const (
	simBufSize = 512
	simDrain   = 128
)

func NewSimulator() *Simulator {
	sim := &Simulator{
		close: make(chan struct{}),
		in:    make(chan ioRequest),
		out:   make(chan ioResult),
	}
	go sim.run()
	return sim
}

func (s *Simulator) run() {
	for {
		select {
		case <-s.close:
			s.close <- struct{}{}
			return
		case r := <-s.in:
			var n int
			var err error
			if r.write {
				n, err = s.doWrite(r.data)
			} else {
				n, err = s.doRead(r.data)
			}
			s.out <- ioResult{n, err}
		}
	}
}

func (s *Simulator) doRead(data []byte) (int, error) {
	if len(s.reply) == 0 {
		return 0, errors.New("read from idle device")
	}
	n := copy(data, s.reply)
	s.reply = s.reply[n:]
	return n, nil
}

func (s *Simulator) doWrite(data []byte) (int, error) {
	s.pending = append(s.pending, data...)
	for len(s.pending) > 0 {
		if s.pending[0] == 0x1b {
			if len(s.pending) < 3 {
				break
			}
			if s.pending[1] != '.' {
				return len(data), errors.New("invalid escape sequence")
			}
			op := s.pending[2]
			s.pending = s.pending[3:]
			switch op {
			case 'B':
				// The device retires buffered instructions
				// between polls.
				s.buffered -= simDrain
				if s.buffered < 0 {
					s.buffered = 0
				}
				s.reply = append(s.reply, strconv.Itoa(simBufSize-s.buffered)...)
				s.reply = append(s.reply, '\r')
			case 'K':
				s.Aborted = true
				s.buffered = 0
			default:
				return len(data), fmt.Errorf("invalid device control %q", op)
			}
			continue
		}
		term := bytes.IndexByte(s.pending, ';')
		if term < 0 {
			break
		}
		instr := string(s.pending[:term])
		s.buffered += term + 1
		s.pending = s.pending[term+1:]
		if err := s.exec(instr); err != nil {
			return len(data), err
		}
	}
	return len(data), nil
}

func (s *Simulator) exec(instr string) error {
	if len(instr) < 2 {
		return fmt.Errorf("short instruction %q", instr)
	}
	mnemonic, args := instr[:2], instr[2:]
	switch mnemonic {
	case "IN":
		s.penDown = false
	case "SP", "VS":
	case "PU", "PD":
		s.penDown = mnemonic == "PD"
		var nums []int
		if args != "" {
			for _, f := range strings.Split(args, ",") {
				n, err := strconv.Atoi(strings.TrimSpace(f))
				if err != nil {
					return fmt.Errorf("instruction %q: %v", instr, err)
				}
				nums = append(nums, n)
			}
		}
		if len(nums)%2 != 0 {
			return fmt.Errorf("instruction %q: odd coordinate count", instr)
		}
		for i := 0; i < len(nums); i += 2 {
			kind := plan.MoveTo
			if s.penDown {
				kind = plan.LineTo
			}
			s.Ops = append(s.Ops, plan.Op{Kind: kind, P: image.Pt(nums[i], nums[i+1])})
		}
	default:
		return fmt.Errorf("invalid instruction %q", instr)
	}
	return nil
}

func (s *Simulator) Read(data []byte) (int, error) {
	s.in <- ioRequest{false, data}
	r := <-s.out
	return r.bytes, r.err
}

func (s *Simulator) Write(data []byte) (int, error) {
	s.in <- ioRequest{true, data}
	r := <-s.out
	return r.bytes, r.err
}

func (s *Simulator) Close() error {
	s.close <- struct{}{}
	<-s.close
	return nil
}
