package widgets

import (
	"math"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart/wavelinechart"
	"github.com/charmbracelet/lipgloss"
)

// Point is one sample of a plotted function.
type Point struct{ X, Y float64 }

// Plot draws a line chart of Points scaled to fit the area.
type Plot struct {
	Points []Point
}

var plotLine = lipgloss.NewStyle().Foreground(ColorBlue)

func (p Plot) Render(width, height int) string {
	if width < 8 || height < 4 {
		return ""
	}
	if len(p.Points) < 2 {
		return Text("(nothing to plot)").Render(width, height)
	}
	minX, maxX, minY, maxY := bounds(p.Points)
	chart := wavelinechart.New(width, height, wavelinechart.WithXYRange(minX, maxX, minY, maxY))
	for _, pt := range p.Points {
		chart.Plot(canvas.Float64Point{X: pt.X, Y: pt.Y})
	}
	chart.Draw()
	return plotLine.Render(chart.View())
}

// bounds pads a flat range so the chart always has some height, and always
// includes y = 0 so the area under the curve reads correctly.
func bounds(pts []Point) (minX, maxX, minY, maxY float64) {
	minX, maxX = pts[0].X, pts[0].X
	minY, maxY = math.Min(0, pts[0].Y), math.Max(0, pts[0].Y)
	for _, pt := range pts[1:] {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}
	return minX, maxX, minY, maxY
}
