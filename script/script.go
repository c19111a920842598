// Package script runs procedural drawing scripts and records their
// output as plans.
package script

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/skip2/go-qrcode"

	"github.com/adishavit/linerun/plan"
	"github.com/adishavit/linerun/plot"
)

// Run executes the drawing script at path and returns the plan it
// draws. Scripts are written in Tengo and draw through the builtins
// move(x, y), line(x, y), rect(x0, y0, x1, y1), curve(x0, y0, x1, y1,
// x2, y2, x3, y3), arc(cx, cy, x, y, radians) and qr(scale, text).
func Run(path string) (plan.Plan, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", path, err)
	}
	return Eval(path, src)
}

// Eval executes a drawing script. The name is used in errors.
func Eval(name string, src []byte) (plan.Plan, error) {
	rec := new(plan.Recorder)
	s := tengo.NewScript(src)
	// Scripts get computation modules, not os access.
	s.SetImports(stdlib.GetModuleMap("math", "rand", "text", "fmt", "times"))
	for n, fn := range builtins(rec) {
		if err := s.Add(n, &tengo.UserFunction{Name: n, Value: fn}); err != nil {
			return nil, fmt.Errorf("script: %s: %w", name, err)
		}
	}
	c, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	if err := c.Run(); err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	return rec.Plan, nil
}

func builtins(rec *plan.Recorder) map[string]tengo.CallableFunc {
	point := func(args []tengo.Object, i int) (image.Point, error) {
		x, err := argInt(args, i)
		if err != nil {
			return image.Point{}, err
		}
		y, err := argInt(args, i+1)
		if err != nil {
			return image.Point{}, err
		}
		return image.Pt(x, y), nil
	}
	return map[string]tengo.CallableFunc{
		"move": func(args ...tengo.Object) (tengo.Object, error) {
			p, err := point(args, 0)
			if err != nil {
				return nil, err
			}
			rec.Move(p)
			return tengo.UndefinedValue, nil
		},
		"line": func(args ...tengo.Object) (tengo.Object, error) {
			p, err := point(args, 0)
			if err != nil {
				return nil, err
			}
			rec.Line(p)
			return tengo.UndefinedValue, nil
		},
		"rect": func(args ...tengo.Object) (tengo.Object, error) {
			p0, err := point(args, 0)
			if err != nil {
				return nil, err
			}
			p1, err := point(args, 2)
			if err != nil {
				return nil, err
			}
			plot.Rect(image.Rectangle{Min: p0, Max: p1}.Canon()).Draw(rec)
			return tengo.UndefinedValue, nil
		},
		"curve": func(args ...tengo.Object) (tengo.Object, error) {
			var ps [4]image.Point
			for i := range ps {
				p, err := point(args, 2*i)
				if err != nil {
					return nil, err
				}
				ps[i] = p
			}
			plot.Curve{P0: ps[0], P1: ps[1], P2: ps[2], P3: ps[3]}.Draw(rec)
			return tengo.UndefinedValue, nil
		},
		"arc": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := point(args, 0)
			if err != nil {
				return nil, err
			}
			start, err := point(args, 2)
			if err != nil {
				return nil, err
			}
			radians, err := argFloat(args, 4)
			if err != nil {
				return nil, err
			}
			plot.Arc{Center: c, Start: start, Radians: radians}.Draw(rec)
			return tengo.UndefinedValue, nil
		},
		"qr": func(args ...tengo.Object) (tengo.Object, error) {
			scale, err := argInt(args, 0)
			if err != nil {
				return nil, err
			}
			content, err := argString(args, 1)
			if err != nil {
				return nil, err
			}
			cmd, err := plot.QR(scale, qrcode.Medium, []byte(content))
			if err != nil {
				return nil, err
			}
			cmd.Draw(rec)
			return tengo.UndefinedValue, nil
		},
	}
}

func argInt(args []tengo.Object, i int) (int, error) {
	if i >= len(args) {
		return 0, tengo.ErrWrongNumArguments
	}
	switch v := args[i].(type) {
	case *tengo.Int:
		return int(v.Value), nil
	case *tengo.Float:
		return int(math.Round(v.Value)), nil
	}
	return 0, tengo.ErrInvalidArgumentType{
		Name:     fmt.Sprintf("arg %d", i),
		Expected: "int",
		Found:    args[i].TypeName(),
	}
}

func argFloat(args []tengo.Object, i int) (float64, error) {
	if i >= len(args) {
		return 0, tengo.ErrWrongNumArguments
	}
	switch v := args[i].(type) {
	case *tengo.Int:
		return float64(v.Value), nil
	case *tengo.Float:
		return v.Value, nil
	}
	return 0, tengo.ErrInvalidArgumentType{
		Name:     fmt.Sprintf("arg %d", i),
		Expected: "float",
		Found:    args[i].TypeName(),
	}
}

func argString(args []tengo.Object, i int) (string, error) {
	if i >= len(args) {
		return "", tengo.ErrWrongNumArguments
	}
	if v, ok := args[i].(*tengo.String); ok {
		return v.Value, nil
	}
	return "", tengo.ErrInvalidArgumentType{
		Name:     fmt.Sprintf("arg %d", i),
		Expected: "string",
		Found:    args[i].TypeName(),
	}
}
