package app

import (
	"fmt"

	"ctrmdash/internal/memorystore"
	"ctrmdash/internal/render"
)

// ComponentCheck verifies a view component can be rendered from the store.
type ComponentCheck func(*memorystore.Store) error

func defaultChecks() map[string]ComponentCheck {
	return map[string]ComponentCheck{
		render.ComponentKPIs:            checkSeries,
		render.ComponentMarket:          checkSeries,
		render.ComponentTrades:          checkTrades,
		render.ComponentRecommendations: checkRecommendations,
		render.ComponentHeatmap:         checkRiskGrid,
		render.ComponentMap:             checkVessels,
	}
}

// componentOrder fixes the init order so banners are stable.
var componentOrder = []string{
	render.ComponentKPIs,
	render.ComponentTrades,
	render.ComponentMarket,
	render.ComponentRecommendations,
	render.ComponentHeatmap,
	render.ComponentMap,
}

func checkSeries(s *memorystore.Store) error {
	benchmarks := s.Sample.Benchmarks()
	if len(benchmarks) == 0 {
		return fmt.Errorf("no benchmark series")
	}
	for _, b := range benchmarks {
		if len(s.Sample.Prices(b)) == 0 {
			return fmt.Errorf("benchmark %s has no prices", b)
		}
	}
	return nil
}

func checkTrades(s *memorystore.Store) error {
	for _, t := range s.Trades.All() {
		if !t.Status.IsValid() {
			return fmt.Errorf("trade %d: invalid status %q", t.ID, t.Status)
		}
		if t.Quantity <= 0 || t.Price <= 0 {
			return fmt.Errorf("trade %d: quantity and price must be positive", t.ID)
		}
	}
	return nil
}

func checkRecommendations(s *memorystore.Store) error {
	for _, r := range s.Sample.Recommendations() {
		if r.Confidence < 0 || r.Confidence > 1 {
			return fmt.Errorf("recommendation %d: confidence %v out of range", r.ID, r.Confidence)
		}
	}
	return nil
}

func checkRiskGrid(s *memorystore.Store) error {
	grid := s.Sample.RiskGrid()
	if len(grid) == 0 {
		return fmt.Errorf("empty risk grid")
	}
	for i, row := range grid {
		if len(row) != len(grid[0]) {
			return fmt.Errorf("risk grid row %d has %d cells, want %d", i, len(row), len(grid[0]))
		}
		for _, v := range row {
			if v < 0 || v > 1 {
				return fmt.Errorf("risk value %v out of range", v)
			}
		}
	}
	return nil
}

func checkVessels(s *memorystore.Store) error {
	v := s.Sample.Vessels()
	if len(v.Ports) == 0 {
		return fmt.Errorf("no ports")
	}
	if len(v.Route) < 2 {
		return fmt.Errorf("route needs at least two points")
	}
	return nil
}
