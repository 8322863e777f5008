// Package charts renders expense summaries as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"household/internal/core"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

const uncategorized = "Uncategorized"

// CategoryBars writes a bar chart of per-category totals as PNG.
func CategoryBars(w io.Writer, totals []core.CategoryTotal) error {
	if len(totals) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		label := t.Category
		if label == "" {
			label = uncategorized
		}
		bars = append(bars, chart.Value{Label: label, Value: t.Total.Float()})
	}
	lo, hi := valueRange(bars)

	graph := chart.BarChart{
		Title:      "Expenses by category",
		Width:      720,
		Height:     360,
		BarWidth:   48,
		BarSpacing: 24,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.2f", v) },
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render category chart: %w", err)
	}
	return nil
}

// valueRange spans zero and every bar; a flat range is widened so the
// renderer does not divide by zero.
func valueRange(bars []chart.Value) (lo, hi float64) {
	for _, b := range bars {
		if b.Value < lo {
			lo = b.Value
		}
		if b.Value > hi {
			hi = b.Value
		}
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}
