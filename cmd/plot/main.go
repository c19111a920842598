// command plot renders plans from plotter scripts and sends them to
// a pen plotter.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adishavit/linerun/driver/gpiostep"
	"github.com/adishavit/linerun/hpgl"
	"github.com/adishavit/linerun/job"
	"github.com/adishavit/linerun/motion"
	"github.com/adishavit/linerun/plan"
	"github.com/adishavit/linerun/plot"
	"github.com/adishavit/linerun/script"
)

var (
	jobFile    = flag.String("job", "", "job configuration file")
	scriptFile = flag.String("script", "", "plotter script")
	planFile   = flag.String("plan", "", "recorded plan file")
	outputs    = flag.String("o", "", "comma separated png, svg or plan outputs")
	serialDev  = flag.String("device", "", "serial device")
	gpio       = flag.Bool("gpio", false, "drive the GPIO stepper gantry instead of a serial plotter")
	watch      = flag.Bool("watch", false, "rerender outputs when the script changes")
)

func main() {
	flag.Parse()
	cfg := job.Default()
	if *jobFile != "" {
		c, err := job.Load(*jobFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg = c
	}
	src := *scriptFile
	if src == "" {
		src = cfg.Source.Script
	}
	planPath := *planFile
	if planPath == "" {
		planPath = cfg.Source.Plan
	}
	switch {
	case src != "" && planPath != "":
		fmt.Fprintf(os.Stderr, "specify one of -script and -plan\n")
		os.Exit(1)
	case src == "" && planPath == "":
		fmt.Fprintf(os.Stderr, "specify a -script or -plan source\n")
		os.Exit(1)
	}
	if *watch {
		if src == "" {
			fmt.Fprintf(os.Stderr, "-watch needs a script source\n")
			os.Exit(1)
		}
		if err := watchLoop(cfg, src); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}
	p, err := load(cfg, src, planPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := emit(cfg, p); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	dev := *serialDev
	if dev == "" {
		dev = cfg.Device.Path
	}
	switch {
	case *gpio:
		err = sendGPIO(cfg, p)
	case dev != "":
		err = send(cfg, dev, p)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func load(cfg *job.Config, scriptPath, planPath string) (plan.Plan, error) {
	var p plan.Plan
	if scriptPath != "" {
		var err error
		p, err = script.Run(scriptPath)
		if err != nil {
			return nil, err
		}
	} else {
		f, err := os.Open(planPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		p, err = plan.Decode(f)
		if err != nil {
			return nil, err
		}
	}
	return fit(cfg, p)
}

// fit translates p onto the page and rejects plans that exceed it.
func fit(cfg *job.Config, p plan.Plan) (plan.Plan, error) {
	page := cfg.Bounds()
	bounds := plot.Measure(p)
	if bounds.Empty() || bounds.In(page) {
		return p, nil
	}
	off := page.Min.Sub(bounds.Min)
	p = plan.Record(plot.Offset(off.X, off.Y, p))
	if !plot.Measure(p).In(page) {
		return nil, fmt.Errorf("plan size %v exceeds the page %v", bounds.Size(), page.Size())
	}
	return p, nil
}

func emit(cfg *job.Config, p plan.Plan) error {
	var outs []string
	if *outputs != "" {
		for _, o := range strings.Split(*outputs, ",") {
			outs = append(outs, strings.TrimSpace(o))
		}
	}
	if cfg.Preview.PNG != "" {
		outs = append(outs, cfg.Preview.PNG)
	}
	if cfg.Preview.SVG != "" {
		outs = append(outs, cfg.Preview.SVG)
	}
	for _, out := range outs {
		var err error
		switch filepath.Ext(out) {
		case ".png":
			err = writePNG(cfg, out, p)
		case ".svg":
			err = writeSVG(cfg, out, p)
		case ".plan":
			err = writePlan(out, p)
		default:
			err = fmt.Errorf("unsupported output %q", out)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writePNG(cfg *job.Config, path string, p plan.Plan) error {
	scale := cfg.Preview.Scale
	bounds := image.Rect(0, 0,
		int(float32(cfg.Page.Width)*scale),
		int(float32(cfg.Page.Height)*scale))
	img := image.NewNRGBA(bounds)
	draw.Draw(img, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	r := plot.NewRasterizer(img, bounds, scale, cfg.Pen.StrokeWidth*scale)
	p.Draw(r)
	r.Rasterize()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func writeSVG(cfg *job.Config, path string, p plan.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	sw := int(cfg.Pen.StrokeWidth)
	if sw < 1 {
		sw = 1
	}
	if err := plan.WriteSVG(f, p, sw); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePlan(path string, p plan.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plan.Encode(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func send(cfg *job.Config, dev string, p plan.Plan) error {
	s, err := hpgl.Open(dev, cfg.Device.Baud)
	if err != nil {
		return err
	}
	defer s.Close()

	quit := make(chan os.Signal, 1)
	cancel := make(chan struct{})
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	plotErr := make(chan error)
	go func() {
		<-quit
		signal.Reset(os.Interrupt)
		close(cancel)
		<-plotErr
		os.Exit(1)
	}()
	progress := make(chan float32, 1)
	go func() {
		for r := range progress {
			fmt.Printf("\rplotting %3.0f%%", r*100)
		}
	}()
	go func() {
		plotErr <- hpgl.Plot(s, p, hpgl.Options{Speed: float32(cfg.Pen.Speed)}, progress, cancel)
	}()
	err = <-plotErr
	fmt.Println()
	return err
}

func sendGPIO(cfg *job.Config, p plan.Plan) error {
	dev, err := gpiostep.Open(gpiostep.DefaultPins, cfg.Device.TickHz)
	if err != nil {
		return err
	}
	quit := make(chan os.Signal, 1)
	cancel := make(chan struct{})
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		signal.Reset(os.Interrupt)
		close(cancel)
	}()
	mode := motion.EightWay
	if cfg.Device.FourWay {
		mode = motion.FourWay
	}
	motion.NewDriver(dev, cancel).Run(mode, p)
	return dev.Close()
}

func watchLoop(cfg *job.Config, scriptPath string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors replace files on save, so watch the directory and
	// filter for the script.
	if err := w.Add(filepath.Dir(scriptPath)); err != nil {
		return err
	}
	render := func() {
		p, err := load(cfg, scriptPath, "")
		if err == nil {
			err = emit(cfg, p)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}
		fmt.Printf("rendered %s\n", scriptPath)
	}
	render()
	var last time.Time
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(scriptPath) {
				continue
			}
			now := time.Now()
			if now.Sub(last) < 100*time.Millisecond {
				continue
			}
			last = now
			render()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
