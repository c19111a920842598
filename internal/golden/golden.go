package golden

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/adishavit/linerun/plan"
)

// ComparePlan compares a plan against its golden form, one operation
// per line. With update set, the golden file is rewritten instead.
// With a dump directory set, SVG renderings of the plan, and on
// mismatch of the golden plan, are written for inspection.
func ComparePlan(path string, update bool, dumpDir string, strokeWidth int, p plan.Plan) error {
	bpath := filepath.Base(path)
	if dumpDir != "" {
		fpath := filepath.Join(dumpDir, bpath+".svg")
		if err := dumpSVG(fpath, strokeWidth, p); err != nil {
			return err
		}
	}
	if update {
		return os.WriteFile(path, []byte(Format(p)), 0o640)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	golden, err := Parse(b)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	mismatches := 0
	for i := range min(len(p), len(golden)) {
		if p[i] != golden[i] {
			mismatches++
		}
	}
	if mismatches > 0 || len(p) != len(golden) {
		if dumpDir != "" {
			fpath := filepath.Join(dumpDir, bpath+".orig.svg")
			if err := dumpSVG(fpath, strokeWidth, golden); err != nil {
				return err
			}
		}
		return fmt.Errorf("%s: plan lengths %d, %d, with %d/%d op mismatches", path, len(p), len(golden), mismatches, len(golden))
	}
	return nil
}

// Format returns the golden text form of a plan.
func Format(p plan.Plan) string {
	var b strings.Builder
	for _, op := range p {
		fmt.Fprintln(&b, op)
	}
	return b.String()
}

// Parse decodes a plan from its golden text form.
func Parse(b []byte) (plan.Plan, error) {
	var p plan.Plan
	for i, line := range strings.Split(string(b), "\n") {
		if line == "" {
			continue
		}
		var kind string
		var pos image.Point
		if _, err := fmt.Sscanf(line, "%1s %d %d", &kind, &pos.X, &pos.Y); err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", i+1, line, err)
		}
		op := plan.Op{P: pos}
		switch kind {
		case "M":
			op.Kind = plan.MoveTo
		case "L":
			op.Kind = plan.LineTo
		default:
			return nil, fmt.Errorf("line %d: unknown op %q", i+1, kind)
		}
		p = append(p, op)
	}
	return p, nil
}

func dumpSVG(f string, strokeWidth int, p plan.Plan) error {
	buf := new(bytes.Buffer)
	if err := plan.WriteSVG(buf, p, strokeWidth); err != nil {
		return err
	}
	return os.WriteFile(f, buf.Bytes(), 0o640)
}
