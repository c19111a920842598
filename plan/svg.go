package plan

import (
	"bufio"
	"fmt"
	"io"

	"github.com/adishavit/linerun/plot"
)

// WriteSVG writes a plan as an SVG document for previews and golden
// file debugging.
func WriteSVG(f io.Writer, p Plan, strokeWidth int) error {
	out := bufio.NewWriter(f)
	bounds := plot.Measure(p)
	const margin = 20
	w, h := bounds.Dx()+2*margin, bounds.Dy()+2*margin
	fmt.Fprintf(out, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"%d %d %d %d\">\n",
		bounds.Min.X-margin, bounds.Min.Y-margin, w, h)
	fmt.Fprintf(out, `<defs><style>
		.plan { fill: none; stroke: #000; stroke-width: %d; stroke-linejoin: round; stroke-linecap: round; }
	</style></defs>`, strokeWidth)
	fmt.Fprint(out, `<path class="plan" d="`)
	for _, op := range p {
		switch op.Kind {
		case MoveTo:
			fmt.Fprintf(out, " M %d %d", op.P.X, op.P.Y)
		case LineTo:
			fmt.Fprintf(out, " L %d %d", op.P.X, op.P.Y)
		}
	}
	fmt.Fprintln(out, `" />`)
	fmt.Fprintln(out, "</svg>")
	return out.Flush()
}
