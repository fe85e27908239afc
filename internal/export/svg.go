package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/descentsim/internal/sim"
)

type Point struct {
	X, Y float64
}

var stageColors = map[string]string{
	"Parachute":       "#ffaa00",
	"Powered Descent": "#00ccff",
	"Success":         "#00ff88",
	"Crashed":         "#ff4444",
}

// ProfileSVG renders altitude against time with a marker for every stage
// transition.
func ProfileSVG(w io.Writer, telemetry []sim.TelemetrySample, transitions []sim.StageTransitionEvent, width, height int) error {
	if len(telemetry) < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", len(telemetry))
	}

	points := make([]Point, len(telemetry))
	for i, s := range telemetry {
		points[i] = Point{X: s.Time, Y: s.Altitude / 1000}
	}
	b := boundsOf(points)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(`<path fill="none" stroke="#00ff00" stroke-width="1.5" d="M`)
	for i, p := range points {
		x, y := b.project(p, width, height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	for _, ev := range transitions {
		x, y := b.project(Point{X: ev.Time, Y: ev.Altitude / 1000}, width, height)
		color, ok := stageColors[ev.Stage.String()]
		if !ok {
			color = "#ffffff"
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11">%s</text>
`, x, y, color, x+6, y-6, color, ev.Stage))
	}

	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

type bounds struct {
	minX, rangeX float64
	minY, rangeY float64
}

// boundsOf pads the data extent by 10% on every side.
func boundsOf(points []Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	return bounds{
		minX:   minX - rangeX*0.1,
		rangeX: rangeX * 1.2,
		minY:   minY - rangeY*0.1,
		rangeY: rangeY * 1.2,
	}
}

func (b bounds) project(p Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / b.rangeX * float64(width)
	y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
	return x, y
}
