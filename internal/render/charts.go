package render

import (
	"fmt"

	"ctrmdash/internal/domain"
	"ctrmdash/internal/seriesgen"
)

const (
	sparklinePoints = 60
	marketPoints    = 90

	colorPrimary   = "#2563eb"
	colorSecondary = "#059669"
	colorBand      = "rgba(37, 99, 235, 0.3)"
	colorMedian    = "rgba(37, 99, 235, 0.6)"
)

// PriceSource is the read side of the generated market data.
type PriceSource interface {
	Benchmarks() []string
	Prices(benchmark string) []seriesgen.PricePoint
	Forecast() []seriesgen.ForecastPoint
}

type KPITile struct {
	ID        string    `json:"id"` // kpi1..kpi4
	KPI       string    `json:"kpi"`
	Label     string    `json:"label"`
	Benchmark string    `json:"benchmark"`
	Points    []float64 `json:"points"`
	Color     string    `json:"color"`
	Last      float64   `json:"last"`
}

// ChartDataset is one line of the market chart. Nil entries are gaps.
type ChartDataset struct {
	Label    string     `json:"label"`
	Data     []*float64 `json:"data"`
	Color    string     `json:"color"`
	Dashed   bool       `json:"dashed,omitempty"`
	Forecast bool       `json:"forecast,omitempty"`
}

type MarketChart struct {
	Labels          []string       `json:"labels"`
	Datasets        []ChartDataset `json:"datasets"`
	ForecastVisible bool           `json:"forecast_visible"`
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func seriesColor(idx int) string {
	if idx%2 == 0 {
		return colorPrimary
	}
	return colorSecondary
}

// KPIs renders one sparkline tile per KPI, alternating between the first two
// benchmarks.
func KPIs(src PriceSource) []KPITile {
	benchmarks := src.Benchmarks()
	tiles := make([]KPITile, 0, len(domain.KPIOrder))
	for idx, k := range domain.KPIOrder {
		_, meta, _ := domain.ParseKPI(string(k))
		tile := KPITile{
			ID:    fmt.Sprintf("kpi%d", idx+1),
			KPI:   string(k),
			Label: meta.Label,
			Color: seriesColor(idx),
		}
		if len(benchmarks) > 0 {
			tile.Benchmark = benchmarks[idx%2%len(benchmarks)]
			for _, p := range tail(src.Prices(tile.Benchmark), sparklinePoints) {
				tile.Points = append(tile.Points, p.Price)
			}
			if n := len(tile.Points); n > 0 {
				tile.Last = tile.Points[n-1]
			}
		}
		tiles = append(tiles, tile)
	}
	return tiles
}

func ptr(v float64) *float64 { return &v }

func nulls(n int) []*float64 {
	return make([]*float64, n)
}

// Market renders the market chart over the last 90 days of every benchmark.
// With showForecast the labels run on through the forecast horizon, history
// lines are padded with gaps and the Q10/Q50/Q90 lines start after the
// history span.
func Market(src PriceSource, showForecast bool) MarketChart {
	chart := MarketChart{ForecastVisible: showForecast}
	benchmarks := src.Benchmarks()
	if len(benchmarks) == 0 {
		return chart
	}

	for _, p := range tail(src.Prices(benchmarks[0]), marketPoints) {
		chart.Labels = append(chart.Labels, p.Date)
	}
	history := len(chart.Labels)

	for idx, b := range benchmarks {
		ds := ChartDataset{Label: b, Color: seriesColor(idx)}
		for _, p := range tail(src.Prices(b), marketPoints) {
			ds.Data = append(ds.Data, ptr(p.Price))
		}
		chart.Datasets = append(chart.Datasets, ds)
	}

	if !showForecast {
		return chart
	}

	fc := src.Forecast()
	for i := range chart.Datasets {
		d := chart.Datasets[i].Data
		if len(d) > history {
			d = d[:history]
		}
		chart.Datasets[i].Data = append(d, nulls(len(fc))...)
	}

	bands := []struct {
		label  string
		color  string
		dashed bool
		pick   func(seriesgen.ForecastPoint) float64
	}{
		{"Forecast Q10", colorBand, true, func(p seriesgen.ForecastPoint) float64 { return p.Q10 }},
		{"Forecast Q50", colorMedian, false, func(p seriesgen.ForecastPoint) float64 { return p.Q50 }},
		{"Forecast Q90", colorBand, true, func(p seriesgen.ForecastPoint) float64 { return p.Q90 }},
	}
	for _, b := range bands {
		ds := ChartDataset{Label: b.label, Color: b.color, Dashed: b.dashed, Forecast: true, Data: nulls(history)}
		for _, p := range fc {
			ds.Data = append(ds.Data, ptr(b.pick(p)))
		}
		chart.Datasets = append(chart.Datasets, ds)
	}
	for _, p := range fc {
		chart.Labels = append(chart.Labels, p.Date)
	}
	return chart
}
