package tournamentexporters

import (
	"bytes"
	"fmt"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used by rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Text       drawing.Color
}

// DefaultPalette is a dark pitch-green theme.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("0f2a1d"),
	Bar:        drawing.ColorFromHex("d4af37"),
	Text:       drawing.ColorFromHex("f5f5f5"),
}

// StandingsChart renders table points per team, in ranked order, as a PNG bar chart.
func StandingsChart(title string, ranked []tournamentdomain.StandingsRow, palette ChartPalette) ([]byte, error) {
	bars := make([]chart.Value, 0, len(ranked))
	total := 0
	for _, r := range ranked {
		total += r.TablePoints
		bars = append(bars, chart.Value{
			Label: string(r.Team),
			Value: float64(r.TablePoints),
			Style: chart.Style{
				FillColor:   palette.Bar,
				StrokeColor: palette.Bar,
			},
		})
	}
	// A bar chart cannot scale an all-zero series.
	if len(bars) == 0 || total == 0 {
		return renderPlaceholder("No results recorded yet", palette)
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: palette.Text},
		Width:      120 + 90*len(bars),
		Height:     400,
		BarWidth:   60,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis:      chart.Style{FontColor: palette.Text, StrokeColor: palette.Text},
		YAxis: chart.YAxis{
			Name:  "Points",
			Style: chart.Style{FontColor: palette.Text, StrokeColor: palette.Text},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render standings chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderPlaceholder(msg string, palette ChartPalette) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render placeholder chart: %w", err)
	}
	return buffer.Bytes(), nil
}
