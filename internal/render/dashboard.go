package render

import (
	"ctrmdash/internal/domain"
)

// Dashboard is the complete view for one GET. Sections of components that
// are unavailable are left nil and listed in Banners.
type Dashboard struct {
	Filters         domain.FilterState   `json:"filters"`
	Reference       domain.Reference     `json:"reference"`
	KPIs            []KPITile            `json:"kpis,omitempty"`
	Market          *MarketChart         `json:"market,omitempty"`
	Trades          *TradeTable          `json:"trades,omitempty"`
	Detail          *TradeDetail         `json:"detail,omitempty"`
	Recommendations []RecommendationCard `json:"recommendations,omitempty"`
	Heatmap         *Heatmap             `json:"heatmap,omitempty"`
	Map             *VesselMap           `json:"map,omitempty"`
	Banners         []Banner             `json:"banners"`
	Degraded        bool                 `json:"degraded"`
}

// DashboardInput is everything a dashboard render reads. A nil Prices or a
// component listed in Unavailable skips the matching sections.
type DashboardInput struct {
	Filters         domain.FilterState
	Trades          []domain.Trade
	OpenTrade       *domain.Trade
	Recommendations []domain.Recommendation
	RiskGrid        [][]float64
	Vessels         domain.Vessels
	Prices          PriceSource
	ForecastVisible bool
	Banners         []Banner
	Unavailable     map[string]bool
}

// Component names, as used in banners.
const (
	ComponentKPIs            = "KPI charts"
	ComponentMarket          = "market chart"
	ComponentTrades          = "trade blotter"
	ComponentRecommendations = "recommendations"
	ComponentHeatmap         = "risk heatmap"
	ComponentMap             = "vessel map"
)

func BuildDashboard(in DashboardInput) Dashboard {
	up := func(c string) bool { return !in.Unavailable[c] }

	d := Dashboard{
		Filters:   in.Filters,
		Reference: domain.DefaultReference(),
		Banners:   append([]Banner{}, in.Banners...),
		Degraded:  len(in.Banners) > 0,
	}
	if in.Prices != nil && up(ComponentKPIs) {
		d.KPIs = KPIs(in.Prices)
	}
	if in.Prices != nil && up(ComponentMarket) {
		m := Market(in.Prices, in.ForecastVisible)
		d.Market = &m
	}
	if up(ComponentTrades) {
		t := Table(in.Trades, in.Filters)
		d.Trades = &t
		if in.OpenTrade != nil {
			det := Detail(*in.OpenTrade)
			d.Detail = &det
		}
	}
	if up(ComponentRecommendations) {
		d.Recommendations = RecommendationCards(in.Recommendations)
	}
	if up(ComponentHeatmap) {
		h := RiskHeatmap(in.RiskGrid)
		d.Heatmap = &h
	}
	if up(ComponentMap) {
		m := Map(in.Vessels)
		d.Map = &m
	}
	return d
}
