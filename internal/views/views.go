// Package views assembles rendered views from the store and the session,
// honouring components that failed to initialise.
package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/memorystore"
	"ctrmdash/internal/render"
	"ctrmdash/internal/viewcache"

	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("component unavailable")

// SessionSource exposes the current session.
type SessionSource interface {
	Session() coordinator.Session
}

type Health struct {
	OK       bool            `json:"ok"`
	Degraded bool            `json:"degraded"`
	Banners  []render.Banner `json:"banners"`
	// components whose views answer 503
	Unavailable []string          `json:"unavailable,omitempty"`
	Probes      map[string]string `json:"probes,omitempty"` // "up" or "down"
}

// Probe reports whether an external dependency answers.
type Probe func(ctx context.Context) bool

const probeTimeout = time.Second

// DashboardView is the body of GET /api/dashboard.
type DashboardView struct {
	Session coordinator.Session `json:"session"`
	render.Dashboard
}

type Views struct {
	logger   *zap.Logger
	store    *memorystore.Store
	sessions SessionSource
	cache    *viewcache.Cache

	mu          sync.RWMutex
	banners     []render.Banner
	unavailable map[string]bool
	probes      map[string]Probe
}

// New builds Views. cache may be nil.
func New(logger *zap.Logger, store *memorystore.Store, sessions SessionSource, cache *viewcache.Cache) *Views {
	return &Views{
		logger:      logger.With(zap.String("component", "views")),
		store:       store,
		sessions:    sessions,
		cache:       cache,
		unavailable: make(map[string]bool),
		probes:      make(map[string]Probe),
	}
}

// AddProbe registers a dependency checked on every health request.
func (v *Views) AddProbe(name string, p Probe) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.probes[name] = p
}

// MarkUnavailable records a failed component and its banner.
func (v *Views) MarkUnavailable(component string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unavailable[component] {
		return
	}
	v.unavailable[component] = true
	v.banners = append(v.banners, render.NewBanner(component))
}

// AddBanner records a failure of a component that has no view of its own.
func (v *Views) AddBanner(b render.Banner) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.banners = append(v.banners, b)
}

func (v *Views) Health() Health {
	v.mu.RLock()
	h := Health{
		OK:       true,
		Degraded: len(v.banners) > 0,
		Banners:  append([]render.Banner{}, v.banners...),
	}
	probes := make(map[string]Probe, len(v.probes))
	for name, p := range v.probes {
		probes[name] = p
	}
	v.mu.RUnlock()
	h.Unavailable = v.Unavailable()

	if len(probes) == 0 {
		return h
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	h.Probes = make(map[string]string, len(probes))
	for name, p := range probes {
		if p(ctx) {
			h.Probes[name] = "up"
			continue
		}
		h.Probes[name] = "down"
		h.Degraded = true
		v.logger.Warn("health probe failed", zap.String("target", name))
	}
	return h
}

// Unavailable lists the components marked unavailable, sorted.
func (v *Views) Unavailable() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, 0, len(v.unavailable))
	for c := range v.unavailable {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (v *Views) check(component string) error {
	v.mu.RLock()
	down := v.unavailable[component]
	v.mu.RUnlock()
	if down {
		v.logger.Warn("view requested for unavailable component", zap.String("target", component))
		return fmt.Errorf("%w: %s", ErrUnavailable, component)
	}
	return nil
}

func (v *Views) Dashboard() DashboardView {
	s := v.sessions.Session()
	snap := v.store.Snapshot()

	v.mu.RLock()
	unavailable := make(map[string]bool, len(v.unavailable))
	for c := range v.unavailable {
		unavailable[c] = true
	}
	banners := append([]render.Banner{}, v.banners...)
	v.mu.RUnlock()

	in := render.DashboardInput{
		Filters:         s.Filters,
		Trades:          snap.Trades,
		Recommendations: snap.Recommendations,
		RiskGrid:        snap.RiskGrid,
		Vessels:         snap.Vessels,
		Prices:          v.store.Sample,
		ForecastVisible: s.ForecastVisible,
		Banners:         banners,
		Unavailable:     unavailable,
	}
	if s.OpenTradeID != 0 {
		if t, ok := v.store.Trades.Get(s.OpenTradeID); ok {
			in.OpenTrade = &t
		}
	}
	return DashboardView{Session: s, Dashboard: render.BuildDashboard(in)}
}

func (v *Views) Trades() (render.TradeTable, error) {
	if err := v.check(render.ComponentTrades); err != nil {
		return render.TradeTable{}, err
	}
	return render.Table(v.store.Trades.All(), v.sessions.Session().Filters), nil
}

func (v *Views) Trade(id int) (render.TradeDetail, error) {
	if err := v.check(render.ComponentTrades); err != nil {
		return render.TradeDetail{}, err
	}
	t, ok := v.store.Trades.Get(id)
	if !ok {
		return render.TradeDetail{}, fmt.Errorf("%w: %d", memorystore.ErrTradeNotFound, id)
	}
	return render.Detail(t), nil
}

func (v *Views) Recommendations() ([]render.RecommendationCard, error) {
	if err := v.check(render.ComponentRecommendations); err != nil {
		return nil, err
	}
	return render.RecommendationCards(v.store.Sample.Recommendations()), nil
}

func (v *Views) KPIs() ([]render.KPITile, error) {
	if err := v.check(render.ComponentKPIs); err != nil {
		return nil, err
	}
	return viewcache.GetOrBuild(v.cache, viewcache.KeyKPIs, func() []render.KPITile {
		return render.KPIs(v.store.Sample)
	}), nil
}

func (v *Views) Market(forecast bool) (render.MarketChart, error) {
	if err := v.check(render.ComponentMarket); err != nil {
		return render.MarketChart{}, err
	}
	return viewcache.GetOrBuild(v.cache, viewcache.MarketKey(forecast), func() render.MarketChart {
		return render.Market(v.store.Sample, forecast)
	}), nil
}

func (v *Views) Heatmap() (render.Heatmap, error) {
	if err := v.check(render.ComponentHeatmap); err != nil {
		return render.Heatmap{}, err
	}
	return viewcache.GetOrBuild(v.cache, viewcache.KeyHeatmap, func() render.Heatmap {
		return render.RiskHeatmap(v.store.Sample.RiskGrid())
	}), nil
}

func (v *Views) Map() (render.VesselMap, error) {
	if err := v.check(render.ComponentMap); err != nil {
		return render.VesselMap{}, err
	}
	return viewcache.GetOrBuild(v.cache, viewcache.KeyMap, func() render.VesselMap {
		return render.Map(v.store.Sample.Vessels())
	}), nil
}
