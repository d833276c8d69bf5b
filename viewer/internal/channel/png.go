package channel

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

var ErrNothingToDraw = errors.New("plot has no traces")

// RenderPNG draws the plot as a line chart with a legend. Missing samples are
// skipped; a trace without finite samples keeps its legend entry and draws
// nothing. A degenerate axis (no samples, single row, flat signal) gets a fixed
// range so the chart library can still scale it.
func RenderPNG(plot *PlotSpec, width, height int, w io.Writer) error {
	if plot == nil || len(plot.Traces) == 0 {
		return ErrNothingToDraw
	}

	xr := newSpan()
	yr := newSpan()
	series := make([]chart.Series, 0, len(plot.Traces))

	for _, tr := range plot.Traces {
		n := min(len(tr.X), len(tr.Y))
		xs := make([]float64, 0, n)
		ys := make([]float64, 0, n)
		for i := 0; i < n; i++ {
			if !finite(tr.X[i]) || !finite(tr.Y[i]) {
				continue
			}
			xs = append(xs, tr.X[i])
			ys = append(ys, tr.Y[i])
			xr.add(tr.X[i])
			yr.add(tr.Y[i])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:      plot.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  plot.XAxisTitle,
			Range: xr.rangeFor(),
		},
		YAxis: chart.YAxis{
			Name:  plot.YAxisTitle,
			Range: yr.rangeFor(),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

type span struct {
	lo, hi float64
}

func newSpan() *span {
	return &span{lo: math.Inf(1), hi: math.Inf(-1)}
}

func (s *span) add(v float64) {
	s.lo = math.Min(s.lo, v)
	s.hi = math.Max(s.hi, v)
}

// rangeFor returns nil (auto range) unless the span is empty or has zero
// width.
func (s *span) rangeFor() chart.Range {
	switch {
	case s.lo > s.hi:
		return &chart.ContinuousRange{Min: 0, Max: 1}
	case s.hi > s.lo:
		return nil
	default:
		return &chart.ContinuousRange{Min: s.lo - 0.5, Max: s.hi + 0.5}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
