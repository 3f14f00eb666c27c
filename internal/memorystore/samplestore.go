package memorystore

import (
	"errors"

	"ctrmdash/internal/domain"
	"ctrmdash/internal/seriesgen"
)

var ErrRecommendationNotFound = errors.New("recommendation not found")

// SampleStore holds the read-only sample data generated once per process.
// Accessors hand out copies so callers cannot alter the shared values.
type SampleStore struct {
	dataset seriesgen.Dataset
	recs    []domain.Recommendation
	vessels domain.Vessels
}

func NewSampleStore(ds seriesgen.Dataset, recs []domain.Recommendation, vessels domain.Vessels) *SampleStore {
	return &SampleStore{dataset: ds, recs: recs, vessels: vessels}
}

func (s *SampleStore) Recommendations() []domain.Recommendation {
	out := make([]domain.Recommendation, len(s.recs))
	for i, r := range s.recs {
		r.Rationale = append([]string(nil), r.Rationale...)
		out[i] = r
	}
	return out
}

func (s *SampleStore) Recommendation(id int) (domain.Recommendation, error) {
	for _, r := range s.recs {
		if r.ID == id {
			r.Rationale = append([]string(nil), r.Rationale...)
			return r, nil
		}
	}
	return domain.Recommendation{}, ErrRecommendationNotFound
}

// RiskGrid returns a deep copy of the risk matrix.
func (s *SampleStore) RiskGrid() [][]float64 {
	out := make([][]float64, len(s.dataset.RiskGrid))
	for i, row := range s.dataset.RiskGrid {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func (s *SampleStore) Vessels() domain.Vessels {
	return domain.Vessels{
		Ports: append([]domain.Port(nil), s.vessels.Ports...),
		Route: append([]domain.LatLon(nil), s.vessels.Route...),
	}
}

// Prices returns a copy of a benchmark's price series, or nil if unknown.
func (s *SampleStore) Prices(benchmark string) []seriesgen.PricePoint {
	src := s.dataset.Series(benchmark)
	if src == nil {
		return nil
	}
	return append([]seriesgen.PricePoint(nil), src...)
}

func (s *SampleStore) Benchmarks() []string {
	return append([]string(nil), s.dataset.Benchmarks...)
}

func (s *SampleStore) Forecast() []seriesgen.ForecastPoint {
	return append([]seriesgen.ForecastPoint(nil), s.dataset.Forecast...)
}
