package seriesgen

import (
	"fmt"
	"time"
)

// Benchmark is a priced commodity with the level its series starts at.
type Benchmark struct {
	Name string
	Base float64
}

// Config holds every knob of the sample dataset. Two calls to Generate with
// equal configs return identical datasets.
type Config struct {
	Seed         uint32
	Anchor       time.Time // "today": history ends before it, forecast starts after it
	Benchmarks   []Benchmark
	Amplitude    float64
	Drift        float64
	Days         int
	ForecastDays int
	ForecastBand float64
	GridRows     int
	GridCols     int
}

// DefaultConfig returns the dashboard's stock dataset parameters anchored at anchor.
func DefaultConfig(anchor time.Time) Config {
	return Config{
		Seed:   123,
		Anchor: anchor,
		Benchmarks: []Benchmark{
			{Name: "WTI", Base: 78},
			{Name: "Brent", Base: 82},
		},
		Amplitude:    5,
		Drift:        0.02,
		Days:         90,
		ForecastDays: 15,
		ForecastBand: 0.8,
		GridRows:     5,
		GridCols:     7,
	}
}

// Dataset is the generated market data.
type Dataset struct {
	Benchmarks []string                `json:"benchmarks"` // series order
	Prices     map[string][]PricePoint `json:"prices"`
	Forecast   []ForecastPoint         `json:"forecast"` // continues the first benchmark
	RiskGrid   [][]float64             `json:"risk_grid"`
}

// Series returns the price series of a benchmark, or nil if unknown.
func (d Dataset) Series(name string) []PricePoint {
	return d.Prices[name]
}

// Validate reports configuration that cannot produce a usable dataset.
func (c Config) Validate() error {
	if len(c.Benchmarks) == 0 {
		return fmt.Errorf("at least one benchmark is required")
	}
	if c.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", c.Days)
	}
	if c.ForecastDays < 0 {
		return fmt.Errorf("forecast days must not be negative, got %d", c.ForecastDays)
	}
	if c.GridRows <= 0 || c.GridCols <= 0 {
		return fmt.Errorf("risk grid must be at least 1x1, got %dx%d", c.GridRows, c.GridCols)
	}
	for _, b := range c.Benchmarks {
		if b.Base <= 0 {
			return fmt.Errorf("benchmark %s: base must be positive", b.Name)
		}
	}
	return nil
}

// Generate draws the dataset from a single generator in a fixed order:
// each benchmark series, then the forecast, then the risk grid.
func Generate(c Config) (Dataset, error) {
	if err := c.Validate(); err != nil {
		return Dataset{}, err
	}

	r := NewRand(c.Seed)
	anchor := c.Anchor.UTC().Truncate(24 * time.Hour)
	start := anchor.AddDate(0, 0, -c.Days)

	ds := Dataset{
		Benchmarks: make([]string, 0, len(c.Benchmarks)),
		Prices:     make(map[string][]PricePoint, len(c.Benchmarks)),
	}
	for _, b := range c.Benchmarks {
		ds.Benchmarks = append(ds.Benchmarks, b.Name)
		ds.Prices[b.Name] = Series(r, SeriesParams{
			Base:      b.Base,
			Amplitude: c.Amplitude,
			Drift:     c.Drift,
			Days:      c.Days,
			Start:     start,
		})
	}

	lead := ds.Prices[ds.Benchmarks[0]]
	ds.Forecast = Forecast(r, ForecastParams{
		Last:  lead[len(lead)-1].Price,
		Days:  c.ForecastDays,
		Band:  c.ForecastBand,
		Start: anchor,
	})

	ds.RiskGrid = RiskGrid(r, c.GridRows, c.GridCols)
	return ds, nil
}
