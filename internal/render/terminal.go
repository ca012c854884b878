package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

const (
	minTerminalWidth = 40
	plotHeight       = 10
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Faint(true)
	valueStyle = lipgloss.NewStyle().Bold(true)
	tileStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Align(lipgloss.Center)
	metaStyle = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// Terminal writes the widget for a terminal of the given width: the tiles in
// a two-column grid followed by an ASCII line plot of the hourly temperatures.
func Terminal(w io.Writer, d domain.Dashboard, ok bool, width int) error {
	if !ok {
		_, err := fmt.Fprintln(w, "Loading weather...")
		return err
	}
	width = max(width, minTerminalWidth)

	// Two tiles per row; each tile's border adds two columns.
	tileWidth := width/2 - 2
	rows := make([]string, 0, (len(d.Tiles)+1)/2)
	for i := 0; i < len(d.Tiles); i += 2 {
		row := []string{renderTile(d.Tiles[i], tileWidth)}
		if i+1 < len(d.Tiles) {
			row = append(row, renderTile(d.Tiles[i+1], tileWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	sections := []string{titleStyle.Render(d.Title)}
	sections = append(sections, rows...)
	sections = append(sections, "", titleStyle.Render(d.HourlyTitle), plot(d.Chart, width))

	meta := "Observed " + d.ObservedAt.Format("2006-01-02 15:04 MST")
	if d.Location != "" {
		meta = d.Location + " · " + meta
	}
	if d.Stale {
		meta += " · data may be out of date"
	}
	sections = append(sections, metaStyle.Render(meta))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

func renderTile(t domain.Tile, width int) string {
	body := labelStyle.Render(strings.ToUpper(t.Label)) + "\n" + valueStyle.Render(t.Value)
	return tileStyle.Width(width).Render(body)
}

func plot(points []domain.ChartPoint, width int) string {
	if len(points) == 0 {
		return "No hourly data"
	}

	temps := make([]float64, len(points))
	for i, p := range points {
		temps[i] = p.Temp
	}

	caption := fmt.Sprintf("%s to %s, °C", points[0].Label, points[len(points)-1].Label)
	return asciigraph.Plot(temps,
		asciigraph.Height(plotHeight),
		asciigraph.Width(width-10),
		asciigraph.Precision(1),
		asciigraph.Caption(caption),
	)
}
