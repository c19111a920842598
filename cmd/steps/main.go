// command steps prints the pixel run of a line segment, for
// debugging rasterization.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/adishavit/linerun/raster"
)

var (
	coords = flag.String("coords", "0,0, 3,1", "segment endpoints as x0,y0, x1,y1")
	clip   = flag.String("clip", "", "clip rectangle as x0,y0, x1,y1")
	cells  = flag.Bool("cells", false, "print every cell the segment crosses")
	grid   = flag.Bool("grid", false, "draw the run as a grid")
)

func main() {
	flag.Parse()
	pts, err := parsePoints(*coords)
	if err != nil || len(pts) != 2 {
		fmt.Fprintf(os.Stderr, "-coords must specify x0,y0, x1,y1\n")
		os.Exit(1)
	}
	p0, p1 := pts[0], pts[1]
	var run raster.Run
	switch {
	case *cells:
		if *clip != "" {
			fmt.Fprintf(os.Stderr, "-clip applies to pixel runs only\n")
			os.Exit(1)
		}
		run = raster.Cells(p0, p1)
	case *clip != "":
		cpts, err := parsePoints(*clip)
		if err != nil || len(cpts) != 2 {
			fmt.Fprintf(os.Stderr, "-clip must specify x0,y0, x1,y1\n")
			os.Exit(1)
		}
		run, err = raster.ClippedPoints(p0, p1, image.Rectangle{Min: cpts[0], Max: cpts[1]})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	default:
		run = raster.Points(p0, p1)
	}
	if *grid {
		printGrid(slices.Collect(run))
	} else {
		for q := range run {
			fmt.Printf("%d,%d\n", q.X, q.Y)
		}
	}
}

func parsePoints(s string) ([]image.Point, error) {
	valsStr := strings.Split(s, ",")
	if len(valsStr)%2 != 0 {
		return nil, fmt.Errorf("odd number of values in %q", s)
	}
	pts := make([]image.Point, len(valsStr)/2)
	for i := range pts {
		x, err := strconv.Atoi(strings.TrimSpace(valsStr[i*2]))
		if err != nil {
			return nil, err
		}
		y, err := strconv.Atoi(strings.TrimSpace(valsStr[i*2+1]))
		if err != nil {
			return nil, err
		}
		pts[i] = image.Pt(x, y)
	}
	return pts, nil
}

func printGrid(pts []image.Point) {
	if len(pts) == 0 {
		return
	}
	px := image.Pt(1, 1)
	bounds := image.Rectangle{Min: pts[0], Max: pts[0].Add(px)}
	set := make(map[image.Point]bool, len(pts))
	for _, p := range pts {
		bounds = bounds.Union(image.Rectangle{Min: p, Max: p.Add(px)})
		set[p] = true
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		var row strings.Builder
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := byte('.')
			if set[image.Pt(x, y)] {
				c = '#'
			}
			row.WriteByte(c)
		}
		fmt.Println(row.String())
	}
}
