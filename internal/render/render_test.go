package render_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrmdash/internal/domain"
	"ctrmdash/internal/memorystore"
	"ctrmdash/internal/render"
	"ctrmdash/internal/seriesgen"
)

type fakePrices struct {
	benchmarks []string
	prices     map[string][]seriesgen.PricePoint
	forecast   []seriesgen.ForecastPoint
}

func (f fakePrices) Benchmarks() []string                   { return f.benchmarks }
func (f fakePrices) Prices(b string) []seriesgen.PricePoint { return f.prices[b] }
func (f fakePrices) Forecast() []seriesgen.ForecastPoint    { return f.forecast }

func newFakePrices(days, forecastDays int) fakePrices {
	f := fakePrices{
		benchmarks: []string{"WTI", "Brent"},
		prices:     map[string][]seriesgen.PricePoint{},
	}
	for i := 0; i < days; i++ {
		date := fmt.Sprintf("d%03d", i)
		f.prices["WTI"] = append(f.prices["WTI"], seriesgen.PricePoint{Date: date, Price: 70 + float64(i)})
		f.prices["Brent"] = append(f.prices["Brent"], seriesgen.PricePoint{Date: date, Price: 80 + float64(i)})
	}
	for i := 0; i < forecastDays; i++ {
		f.forecast = append(f.forecast, seriesgen.ForecastPoint{Date: fmt.Sprintf("f%02d", i), Q10: 1, Q50: 2, Q90: 3})
	}
	return f
}

// go test -v --run ^TestTableFormatsRows$
func TestTableFormatsRows(t *testing.T) {
	table := render.Table(memorystore.SeedTrades(), domain.FilterState{Commodity: "WTI"})

	assert.Equal(t, 4, table.Total)
	assert.Equal(t, 2, table.Visible)
	require.Len(t, table.Rows, 2)

	row := table.Rows[0]
	assert.Equal(t, 1, row.ID)
	assert.Equal(t, "50,000", row.Quantity)
	assert.Equal(t, "$82.1", row.Price)
	assert.Equal(t, "status-captured", row.StatusClass)
	assert.Equal(t, "Delta Trading", row.Counterparty)
	assert.Equal(t, "View trade details for WTI Sell", row.AriaLabel)
	assert.Equal(t, 3, table.Rows[1].ID)
}

// go test -v --run ^TestTableEmptyFilterKeepsEverything$
func TestTableEmptyFilterKeepsEverything(t *testing.T) {
	table := render.Table(memorystore.SeedTrades(), domain.FilterState{})
	assert.Equal(t, table.Total, table.Visible)
	assert.NotNil(t, table.Rows)

	empty := render.Table(nil, domain.FilterState{Commodity: "WTI"})
	assert.NotNil(t, empty.Rows)
	assert.Empty(t, empty.Rows)
}

// go test -v --run ^TestDetail$
func TestDetail(t *testing.T) {
	trades := memorystore.SeedTrades()

	d := render.Detail(trades[0])
	assert.Equal(t, "50,000 bbl", d.QuantityLabel)
	assert.Equal(t, "$4,105,000", d.Notional)
	assert.True(t, d.CanAdvance)
	assert.Equal(t, "Invoiced", d.NextStatus)
	assert.Equal(t, "Invoice", d.ActionLabel)

	settled := render.Detail(trades[1])
	assert.False(t, settled.CanAdvance)
	assert.Empty(t, settled.NextStatus)

	odd := render.Detail(domain.Trade{Quantity: 3, Price: 82.35, Status: domain.StatusProposed})
	assert.Equal(t, "$247.05", odd.Notional)
	assert.Equal(t, "Captured", odd.NextStatus)
}

// go test -v --run ^TestRecommendationCards$
func TestRecommendationCards(t *testing.T) {
	cards := render.RecommendationCards(memorystore.SeedRecommendations())
	require.Len(t, cards, 3)
	assert.Equal(t, 78, cards[0].ConfidencePct)
	assert.Equal(t, "Confidence: 78%", cards[0].ConfidenceLabel)
	assert.Equal(t, 66, cards[1].ConfidencePct)
	assert.Equal(t, 61, cards[2].ConfidencePct)
	assert.Len(t, cards[0].Rationale, 3)
}

// go test -v --run ^TestRiskColor$
func TestRiskColor(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0.1, "rgb(5, 223, 105)"},
		{0.5, "rgb(112, 224, 6)"},
		{0.66, "rgb(217, 38, 38)"},
		{1, "rgb(220, 38, 38)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, render.RiskColor(tt.v), "v=%v", tt.v)
	}
}

// go test -v --run ^TestRiskHeatmap$
func TestRiskHeatmap(t *testing.T) {
	h := render.RiskHeatmap([][]float64{{0.1, 0.5}, {0.9, 0.66}})
	assert.Equal(t, 2, h.Rows)
	assert.Equal(t, 2, h.Cols)
	require.Len(t, h.Cells, 4)

	c := h.Cells[1]
	assert.Equal(t, 0, c.Row)
	assert.Equal(t, 1, c.Col)
	assert.Equal(t, 50, c.Intensity)
	assert.Equal(t, "Risk Level: 50% (Row 1, Col 2)", c.Title)
	assert.Equal(t, "Risk Level: 66% (Row 2, Col 2)", h.Cells[3].Title)
}

// go test -v --run ^TestKPIs$
func TestKPIs(t *testing.T) {
	tiles := render.KPIs(newFakePrices(100, 0))
	require.Len(t, tiles, 4)

	wantKPI := []string{"wti", "brent", "basis", "hedge"}
	wantBench := []string{"WTI", "Brent", "WTI", "Brent"}
	wantColor := []string{"#2563eb", "#059669", "#2563eb", "#059669"}
	for i, tile := range tiles {
		assert.Equal(t, fmt.Sprintf("kpi%d", i+1), tile.ID)
		assert.Equal(t, wantKPI[i], tile.KPI)
		assert.Equal(t, wantBench[i], tile.Benchmark)
		assert.Equal(t, wantColor[i], tile.Color)
		assert.Len(t, tile.Points, 60)
	}
	assert.Equal(t, 110.0, tiles[0].Points[0])
	assert.Equal(t, 169.0, tiles[0].Last)
}

// go test -v --run ^TestMarketWithoutForecast$
func TestMarketWithoutForecast(t *testing.T) {
	chart := render.Market(newFakePrices(100, 3), false)

	require.Len(t, chart.Labels, 90)
	assert.Equal(t, "d010", chart.Labels[0])
	require.Len(t, chart.Datasets, 2)
	assert.Equal(t, "WTI", chart.Datasets[0].Label)
	assert.Equal(t, "Brent", chart.Datasets[1].Label)
	for _, ds := range chart.Datasets {
		assert.Len(t, ds.Data, 90)
		assert.False(t, ds.Forecast)
	}
}

// go test -v --run ^TestMarketForecastPadding$
func TestMarketForecastPadding(t *testing.T) {
	chart := render.Market(newFakePrices(100, 3), true)

	require.Len(t, chart.Labels, 93)
	assert.Equal(t, "f00", chart.Labels[90])
	require.Len(t, chart.Datasets, 5)

	wti := chart.Datasets[0]
	require.Len(t, wti.Data, 93)
	require.NotNil(t, wti.Data[89])
	assert.Nil(t, wti.Data[90])
	assert.Nil(t, wti.Data[92])

	labels := []string{"Forecast Q10", "Forecast Q50", "Forecast Q90"}
	for i, ds := range chart.Datasets[2:] {
		assert.Equal(t, labels[i], ds.Label)
		assert.True(t, ds.Forecast)
		require.Len(t, ds.Data, 93)
		for j := 0; j < 90; j++ {
			assert.Nil(t, ds.Data[j])
		}
		require.NotNil(t, ds.Data[90])
		assert.Equal(t, float64(i+1), *ds.Data[90])
	}
	assert.True(t, chart.Datasets[2].Dashed)
	assert.False(t, chart.Datasets[3].Dashed)
}

// go test -v --run ^TestMap$
func TestMap(t *testing.T) {
	m := render.Map(memorystore.SeedVessels())

	assert.Len(t, m.Markers, 3)
	assert.Equal(t, "<strong>Rotterdam</strong><br/>Port facility", m.Markers[0].Popup)
	assert.Len(t, m.Route.Points, 4)
	require.NotNil(t, m.RouteLabel)
	assert.Equal(t, "Rotterdam → Houston", m.RouteLabel.Text)
	assert.Equal(t, domain.LatLon{36.0, -40.0}, m.RouteLabel.Position)

	sw, ne := m.Bounds[0], m.Bounds[1]
	assert.Less(t, sw[0], 29.73)
	assert.Greater(t, ne[0], 51.94)
	assert.Less(t, sw[1], -96.77)
	assert.Greater(t, ne[1], 4.14)
}

// go test -v --run ^TestNewToast$
func TestNewToast(t *testing.T) {
	now := time.Date(2025, 7, 8, 12, 0, 0, 0, time.UTC)
	toast := render.NewToast("Trade Invoiced successfully", render.ToastSuccess, 3*time.Second, now)

	assert.NotEmpty(t, toast.ID)
	assert.Equal(t, int64(3000), toast.DurationMS)
	assert.Equal(t, now.Add(3*time.Second), toast.ExpiresAt)

	other := render.NewToast("x", render.ToastError, time.Second, now)
	assert.NotEqual(t, toast.ID, other.ID)
}

// go test -v --run ^TestBuildDashboardSkipsUnavailable$
func TestBuildDashboardSkipsUnavailable(t *testing.T) {
	trades := memorystore.SeedTrades()
	d := render.BuildDashboard(render.DashboardInput{
		Trades:          trades,
		OpenTrade:       &trades[0],
		Recommendations: memorystore.SeedRecommendations(),
		RiskGrid:        [][]float64{{0.2}},
		Vessels:         memorystore.SeedVessels(),
		Prices:          newFakePrices(100, 3),
		Banners:         []render.Banner{render.NewBanner(render.ComponentMap)},
		Unavailable:     map[string]bool{render.ComponentMap: true},
	})

	assert.True(t, d.Degraded)
	require.Len(t, d.Banners, 1)
	assert.Equal(t, "Failed to initialize vessel map", d.Banners[0].Message)
	assert.Nil(t, d.Map)
	require.NotNil(t, d.Trades)
	assert.Equal(t, 4, d.Trades.Visible)
	require.NotNil(t, d.Detail)
	assert.Equal(t, 1, d.Detail.ID)
	require.NotNil(t, d.Market)
	assert.False(t, d.Market.ForecastVisible)
	assert.Len(t, d.KPIs, 4)
	assert.Len(t, d.Recommendations, 3)
	require.NotNil(t, d.Heatmap)
}
