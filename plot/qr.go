package plot

import (
	"image"

	"github.com/skip2/go-qrcode"
)

// QR returns a command drawing the modules of a QR code holding
// content, scale pixels per module. Modules are filled with horizontal
// strokes, every other raster line drawn right to left to shorten pen
// travel.
func QR(scale int, level qrcode.RecoveryLevel, content []byte) (Command, error) {
	qr, err := qrcode.New(string(content), level)
	if err != nil {
		return nil, err
	}
	qr.DisableBorder = true
	return qrCmd{
		scale: scale,
		qr:    qr.Bitmap(),
	}, nil
}

type qrCmd struct {
	scale int
	qr    [][]bool
}

type qrRun struct {
	x0, x1 int
}

func (q qrCmd) Draw(p Program) {
	for y, row := range q.qr {
		var runs []qrRun
		start := -1
		for x, on := range row {
			switch {
			case on && start == -1:
				start = x
			case !on && start != -1:
				runs = append(runs, qrRun{start, x})
				start = -1
			}
		}
		if start != -1 {
			runs = append(runs, qrRun{start, len(row)})
		}
		for i := 0; i < q.scale; i++ {
			line := y*q.scale + i
			if line%2 == 0 {
				for _, r := range runs {
					p.Move(image.Pt(r.x0*q.scale, line))
					p.Line(image.Pt(r.x1*q.scale-1, line))
				}
				continue
			}
			for j := len(runs) - 1; j >= 0; j-- {
				r := runs[j]
				p.Move(image.Pt(r.x1*q.scale-1, line))
				p.Line(image.Pt(r.x0*q.scale, line))
			}
		}
	}
}
