// Package seriesgen synthesizes the sample market data behind the dashboard:
// daily price series, a short forecast band and the risk matrix.
package seriesgen

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// PricePoint is one day of a historical price series.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ForecastPoint is one day of the forecast: median path with a symmetric band.
type ForecastPoint struct {
	Date string  `json:"date"`
	Q10  float64 `json:"q10"`
	Q50  float64 `json:"q50"`
	Q90  float64 `json:"q90"`
}

// SeriesParams controls a generated daily price series.
type SeriesParams struct {
	Base      float64   // level the series starts at; prices stay within ±30% of it
	Amplitude float64   // seasonality amplitude
	Drift     float64   // additive drift per day
	Days      int       // number of points
	Start     time.Time // date of the first point
}

// ForecastParams controls a generated forecast.
type ForecastParams struct {
	Last  float64   // last historical price the median path continues from
	Days  int       // number of forecast points
	Band  float64   // half width of the Q10/Q90 band around Q50
	Start time.Time // day before the first forecast point
}

// round2 rounds half up to two decimals.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func day(start time.Time, offset int) string {
	return start.AddDate(0, 0, offset).Format(dateLayout)
}

// Series draws one value from r per day.
func Series(r *Rand, p SeriesParams) []PricePoint {
	out := make([]PricePoint, 0, p.Days)
	v := p.Base
	lo, hi := p.Base*0.7, p.Base*1.3

	for i := 0; i < p.Days; i++ {
		seasonality := p.Amplitude * math.Sin(float64(i)/25) * 0.02
		noise := (r.Float64() - 0.5) * 0.3
		v += p.Drift + seasonality + noise

		v = math.Max(v, lo)
		v = math.Min(v, hi)

		out = append(out, PricePoint{Date: day(p.Start, i), Price: round2(v)})
	}
	return out
}

// Forecast draws one value from r per forecast day.
func Forecast(r *Rand, p ForecastParams) []ForecastPoint {
	out := make([]ForecastPoint, 0, p.Days)
	v := p.Last

	for i := 1; i <= p.Days; i++ {
		v += 0.02 + (r.Float64()-0.5)*0.2
		out = append(out, ForecastPoint{
			Date: day(p.Start, i),
			Q10:  round2(v - p.Band),
			Q50:  round2(v),
			Q90:  round2(v + p.Band),
		})
	}
	return out
}

// RiskGrid fills a rows×cols matrix row by row with values in [0,1].
func RiskGrid(r *Rand, rows, cols int) [][]float64 {
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = make([]float64, cols)
		for j := range grid[i] {
			grid[i][j] = round2(r.Float64())
		}
	}
	return grid
}
