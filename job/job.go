// Package job loads plotter job files.
package job

import (
	"errors"
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a plot job: the drawing source, the page it is
// drawn on and the device it is sent to.
type Config struct {
	Page    Page    `yaml:"page"`
	Pen     Pen     `yaml:"pen"`
	Device  Device  `yaml:"device"`
	Source  Source  `yaml:"source"`
	Preview Preview `yaml:"preview"`
}

// Page is the drawing area in pixels.
type Page struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Margin int `yaml:"margin"`
}

type Pen struct {
	// Speed in device units per second, for devices that support it.
	Speed int `yaml:"speed"`
	// StrokeWidth of the pen in pixels, used for previews.
	StrokeWidth float32 `yaml:"stroke_width"`
}

type Device struct {
	// Path of the serial device. Empty selects a platform default.
	Path string `yaml:"path"`
	Baud int    `yaml:"baud"`
	// TickHz is the step rate for direct motion drivers.
	TickHz int `yaml:"tick_hz"`
	// FourWay restricts direct motion to one axis per step.
	FourWay bool `yaml:"fourway"`
}

// Source locates the drawing, either a script or a compiled plan.
type Source struct {
	Script string `yaml:"script"`
	Plan   string `yaml:"plan"`
}

type Preview struct {
	PNG   string  `yaml:"png"`
	SVG   string  `yaml:"svg"`
	Scale float32 `yaml:"scale"`
}

// Default returns the built-in job configuration.
func Default() *Config {
	return &Config{
		Page: Page{
			Width:  1024,
			Height: 1024,
			Margin: 16,
		},
		Pen: Pen{
			Speed:       10,
			StrokeWidth: 1,
		},
		Device: Device{
			Baud:   9600,
			TickHz: 1000,
		},
		Preview: Preview{
			Scale: 1,
		},
	}
}

// Load reads a job file, fills in defaults and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("job: load %s: %w", path, err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("job: parse %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("job: %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Page.Width <= 0 || c.Page.Height <= 0 {
		return fmt.Errorf("page size %dx%d is not positive", c.Page.Width, c.Page.Height)
	}
	if c.Page.Margin < 0 || 2*c.Page.Margin >= min(c.Page.Width, c.Page.Height) {
		return fmt.Errorf("margin %d does not fit the page", c.Page.Margin)
	}
	if c.Pen.Speed <= 0 {
		return errors.New("pen speed is not positive")
	}
	if c.Pen.StrokeWidth <= 0 {
		return errors.New("pen stroke width is not positive")
	}
	if c.Device.Baud <= 0 {
		return errors.New("device baud rate is not positive")
	}
	if c.Device.TickHz <= 0 {
		return errors.New("device tick rate is not positive")
	}
	if c.Source.Script != "" && c.Source.Plan != "" {
		return errors.New("source names both a script and a plan")
	}
	if c.Preview.Scale <= 0 {
		return errors.New("preview scale is not positive")
	}
	return nil
}

// Bounds returns the drawable page area, inset by the margin.
func (c *Config) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Page.Width, c.Page.Height).Inset(c.Page.Margin)
}
