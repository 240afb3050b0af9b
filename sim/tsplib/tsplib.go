// Package tsplib reads the NODE_COORD_SECTION subset of the TSPLIB format
// and maps the planar instance coordinates into a geographic window so the
// network builders can treat them as latitude/longitude.
package tsplib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidFormat reports an input from which no coordinates could be parsed.
var ErrInvalidFormat = errors.New("tsplib: invalid format")

// Point is a single NODE_COORD_SECTION entry.
type Point struct {
	ID int
	X  float64
	Y  float64
}

// Problem is a parsed TSPLIB instance.
type Problem struct {
	Name   string
	Points []Point
}

// Parse reads a TSPLIB instance from r. Header lines other than NAME are
// ignored; coordinate mode starts at NODE_COORD_SECTION and ends at EOF.
// Malformed coordinate lines are skipped silently.
func Parse(r io.Reader) (*Problem, error) {
	p := &Problem{Name: "unknown"}
	inCoords := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "EOF" {
			break
		}
		if strings.HasPrefix(line, "NAME") {
			parts := strings.Split(line, ":")
			p.Name = strings.TrimSpace(parts[len(parts)-1])
			continue
		}
		if line == "NODE_COORD_SECTION" {
			inCoords = true
			continue
		}
		if !inCoords {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		p.Points = append(p.Points, Point{ID: id, X: x, Y: y})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tsplib: read: %w", err)
	}
	if len(p.Points) == 0 {
		return nil, fmt.Errorf("%w: no coordinates found", ErrInvalidFormat)
	}
	return p, nil
}

// ParseFile parses the TSPLIB file at path.
func ParseFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tsplib: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Window is the target geographic rectangle for Normalize.
type Window struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// DefaultWindow covers a Central-European rectangle.
var DefaultWindow = Window{LatMin: 45.0, LatMax: 55.0, LonMin: 14.0, LonMax: 24.0}

// LatLon is a geographic coordinate pair in degrees.
type LatLon struct {
	Lat, Lon float64
}

// Normalize maps the instance coordinates into w, preserving the instance's
// aspect ratio. Longitude spans are corrected by cos(mean latitude) so that
// shapes are not distorted by the projection. The result is centred in the
// window and ordered like the input points.
func Normalize(points []Point, w Window) []LatLon {
	if len(points) == 0 {
		return nil
	}

	xMin, xMax := points[0].X, points[0].X
	yMin, yMax := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		xMin = math.Min(xMin, p.X)
		xMax = math.Max(xMax, p.X)
		yMin = math.Min(yMin, p.Y)
		yMax = math.Max(yMax, p.Y)
	}
	xSpan := xMax - xMin
	if xSpan == 0 {
		xSpan = 1.0
	}
	ySpan := yMax - yMin
	if ySpan == 0 {
		ySpan = 1.0
	}

	meanLatRad := (w.LatMin + w.LatMax) / 2 * math.Pi / 180
	lonCorrection := math.Cos(meanLatRad)

	targetHeight := w.LatMax - w.LatMin
	targetWidth := (w.LonMax - w.LonMin) * lonCorrection

	scale := math.Min(targetWidth/xSpan, targetHeight/ySpan)

	latCenter := (w.LatMin + w.LatMax) / 2
	lonCenter := (w.LonMin + w.LonMax) / 2

	out := make([]LatLon, len(points))
	for i, p := range points {
		relX := p.X - (xMin+xMax)/2
		relY := p.Y - (yMin+yMax)/2
		out[i] = LatLon{
			Lat: latCenter + relY*scale,
			Lon: lonCenter + relX*scale/lonCorrection,
		}
	}
	return out
}
