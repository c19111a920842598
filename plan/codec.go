package plan

import (
	"fmt"
	"image"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// fileFormat is the CBOR representation of a plan. Operation
// positions are stored relative to the previous operation, starting
// at the origin.
type fileFormat struct {
	Version int      `cbor:"1,keyasint"`
	Ops     []fileOp `cbor:"2,keyasint"`
}

type fileOp struct {
	Line bool `cbor:"1,keyasint,omitempty"`
	DX   int  `cbor:"2,keyasint,omitempty"`
	DY   int  `cbor:"3,keyasint,omitempty"`
}

const fileVersion = 1

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
	dm, err := cbor.DecOptions{MaxArrayElements: 1 << 22}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// Encode writes the binary form of a plan.
func Encode(w io.Writer, p Plan) error {
	f := fileFormat{
		Version: fileVersion,
		Ops:     make([]fileOp, 0, len(p)),
	}
	var pos image.Point
	for _, op := range p {
		f.Ops = append(f.Ops, fileOp{
			Line: op.Kind == LineTo,
			DX:   op.P.X - pos.X,
			DY:   op.P.Y - pos.Y,
		})
		pos = op.P
	}
	if err := encMode.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	return nil
}

// Decode reads a plan from its binary form.
func Decode(r io.Reader) (Plan, error) {
	var f fileFormat
	if err := decMode.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	if f.Version != fileVersion {
		return nil, fmt.Errorf("plan: unsupported version %d", f.Version)
	}
	p := make(Plan, 0, len(f.Ops))
	var pos image.Point
	for _, op := range f.Ops {
		pos = pos.Add(image.Pt(op.DX, op.DY))
		kind := MoveTo
		if op.Line {
			kind = LineTo
		}
		p = append(p, Op{Kind: kind, P: pos})
	}
	return p, nil
}
