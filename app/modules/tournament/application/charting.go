package tournamentservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/repositories"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colours used by progression charts.
type ChartPalette struct {
	Background drawing.Color
	Text       drawing.Color
	Field      drawing.Color
	Eliminated drawing.Color
	User       drawing.Color
}

// DefaultPalette is the dark court palette.
func DefaultPalette() ChartPalette {
	return ChartPalette{
		Background: drawing.ColorFromHex("0a0a0a"),
		Text:       drawing.ColorFromHex("e5e5e5"),
		Field:      drawing.ColorFromHex("3b82f6"),
		Eliminated: drawing.ColorFromHex("525252"),
		User:       drawing.ColorFromHex("f97316"),
	}
}

// RenderProgressChart renders the session's cumulative scores as a PNG.
func (s *TournamentService) RenderProgressChart(ctx context.Context, sessionID string) ([]byte, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return GenerateProgressChart(sess.Tournament, DefaultPalette())
}

// GenerateProgressChart plots every player's running total per round. The
// user's line is drawn last so it sits on top.
func GenerateProgressChart(t tournamentdomain.Tournament, palette ChartPalette) ([]byte, error) {
	rounds := 0
	maxTotal := 0
	for _, p := range t.Players {
		rounds = max(rounds, len(p.RoundScores))
		maxTotal = max(maxTotal, p.TotalScore)
	}
	if rounds == 0 {
		return renderNoDataPlaceholder(palette)
	}

	var series []chart.Series
	var userSeries chart.Series
	for _, p := range t.Players {
		xs := []float64{0}
		ys := []float64{0}
		running := 0
		for i, score := range p.RoundScores {
			running += score
			xs = append(xs, float64(i+1))
			ys = append(ys, float64(running))
		}

		style := chart.Style{StrokeColor: palette.Field, StrokeWidth: 1.5}
		if p.IsEliminated {
			style.StrokeColor = palette.Eliminated
			style.StrokeDashArray = []float64{4, 2}
		}
		line := chart.ContinuousSeries{Name: p.Name, XValues: xs, YValues: ys, Style: style}
		if p.User {
			line.Style = chart.Style{StrokeColor: palette.User, StrokeWidth: 3, DotColor: palette.User, DotWidth: 4}
			userSeries = line
			continue
		}
		series = append(series, line)
	}
	if userSeries != nil {
		series = append(series, userSeries)
	}

	graph := chart.Chart{
		Width:  900,
		Height: 450,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:  "Round",
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(rounds, t.Variant.TotalRounds))},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  "Total",
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxTotal + 1)},
		},
		Series: series,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const msg = "No rounds played yet"

	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
