package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

// Chart dimensions in pixels.
const (
	ChartWidth  = 720
	ChartHeight = 200

	maxXTicks = 12
)

var (
	white     = drawing.ColorWhite
	gridColor = drawing.Color{R: 255, G: 255, B: 255, A: 77}
)

// emptyChartSVG is drawn when there are no hourly points to plot.
const emptyChartSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">` +
	`<text x="50%%" y="50%%" fill="white" text-anchor="middle" font-family="sans-serif">No hourly data</text></svg>`

// Chart writes the hourly temperature line chart as SVG.
func Chart(w io.Writer, points []domain.ChartPoint) error {
	if len(points) == 0 {
		_, err := fmt.Fprintf(w, emptyChartSVG, ChartWidth, ChartHeight, ChartWidth, ChartHeight)
		return err
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Temp
	}
	// go-chart needs at least two distinct x values; a single reading is
	// drawn as a flat segment across the plot.
	if len(points) == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
	}

	minY, maxY := yRange(ys)
	ticks := xTicks(points)

	gridLines := make([]chart.GridLine, 0, len(ticks))
	for _, t := range ticks {
		gridLines = append(gridLines, chart.GridLine{Value: t.Value})
	}

	axisStyle := chart.Style{
		FontColor:   white,
		StrokeColor: white,
		StrokeWidth: 1,
	}
	gridStyle := chart.Style{
		StrokeColor:     gridColor,
		StrokeWidth:     1,
		StrokeDashArray: []float64{3, 3},
	}

	graph := chart.Chart{
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding:   chart.Box{Top: 16, Left: 8, Right: 16, Bottom: 8},
			FillColor: drawing.ColorTransparent,
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorTransparent,
		},
		XAxis: chart.XAxis{
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: xs[len(xs)-1]},
			Ticks:          ticks,
			GridLines:      gridLines,
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
			GridMajorStyle: gridStyle,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.FormatFloat(f, 'f', 0, 64)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "temp",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: white,
					StrokeWidth: 3,
					DotColor:    white,
					DotWidth:    5,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// yRange pads the temperature extent to whole degrees so flat series still
// have a non-zero range.
func yRange(ys []float64) (float64, float64) {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	return math.Floor(lo) - 1, math.Ceil(hi) + 1
}

// xTicks labels at most maxXTicks evenly spaced points.
func xTicks(points []domain.ChartPoint) []chart.Tick {
	step := (len(points) + maxXTicks - 1) / maxXTicks
	ticks := make([]chart.Tick, 0, maxXTicks+1)
	for i := 0; i < len(points); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: points[i].Label})
	}
	return ticks
}
