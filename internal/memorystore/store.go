package memorystore

import (
	"ctrmdash/internal/domain"
	"ctrmdash/internal/seriesgen"
)

// Store is the dashboard's sample data: the mutable trade list plus the
// read-only generated data.
type Store struct {
	Trades *TradeStore
	Sample *SampleStore
}

// NewSeeded builds a Store from the stock seed data and a generated dataset.
func NewSeeded(ds seriesgen.Dataset) *Store {
	return &Store{
		Trades: NewTradeStore(SeedTrades()),
		Sample: NewSampleStore(ds, SeedRecommendations(), SeedVessels()),
	}
}

// Snapshot bundles copies of everything a full dashboard render needs.
type Snapshot struct {
	Trades          []domain.Trade
	Recommendations []domain.Recommendation
	RiskGrid        [][]float64
	Vessels         domain.Vessels
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Trades:          s.Trades.All(),
		Recommendations: s.Sample.Recommendations(),
		RiskGrid:        s.Sample.RiskGrid(),
		Vessels:         s.Sample.Vessels(),
	}
}
