// Package charts renders the dashboard's distribution charts as PNG images.
package charts

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"churn-prediction-service/internal/core/domain"
)

const (
	width  = 8 * vg.Inch
	height = 4 * vg.Inch
)

// Distribution draws a histogram of churn probabilities.
func Distribution(table *domain.PredictionTable, bins int) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Churn Probability Distribution"
	p.X.Label.Text = "churn probability"
	p.Y.Label.Text = "customers"
	p.X.Min, p.X.Max = 0, 1

	if table.Len() > 0 {
		values := make(plotter.Values, table.Len())
		for i, rec := range table.Records {
			values[i] = rec.ChurnProbability
		}
		h, err := plotter.NewHist(values, bins)
		if err != nil {
			return nil, fmt.Errorf("build histogram: %w", err)
		}
		h.FillColor = plotutil.Color(2)
		p.Add(h)
	}

	return render(p)
}

// Split draws churned against retained customer counts.
func Split(summary *domain.PredictionSummary) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Churn vs Retained"
	p.Y.Label.Text = "customers"

	bars, err := plotter.NewBarChart(plotter.Values{float64(summary.Retained), float64(summary.Churned)}, vg.Points(60))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX("Retained", "Churn")

	return render(p)
}

func render(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
