// Package api exposes the dashboard views and commands over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/metrics"
	"ctrmdash/internal/stream"
	"ctrmdash/internal/views"
	"ctrmdash/pkg/storage/postgres"

	gin "github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Dispatcher is the command side of the coordinator.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd coordinator.Command) (coordinator.Result, error)
	Session() coordinator.Session
}

// PriceHistory reads archived benchmark series.
type PriceHistory interface {
	GetPrices(ctx context.Context, benchmark, series string, from, to time.Time) ([]postgres.PriceRecord, error)
}

type Options struct {
	CORSOrigin     string
	Mode           string        // gin mode; empty keeps the current one
	CommandTimeout time.Duration // bound on a single Dispatch
	History        PriceHistory  // nil answers /api/market/history with 503
}

type Server struct {
	R        *gin.Engine
	Views    *views.Views
	Commands Dispatcher
	Hub      *stream.Hub      // nil disables /ws
	Metrics  *metrics.Metrics // nil disables /metrics
	History  PriceHistory
	Logger   *zap.Logger

	validate       *validator.Validate
	commandTimeout time.Duration
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewServer wires the router, middleware and handlers.
func NewServer(v *views.Views, commands Dispatcher, hub *stream.Hub, m *metrics.Metrics,
	logger *zap.Logger, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 5 * time.Second
	}

	g := gin.New()
	s := &Server{
		R:              g,
		Views:          v,
		Commands:       commands,
		Hub:            hub,
		Metrics:        m,
		History:        opts.History,
		Logger:         logger.With(zap.String("component", "api")),
		validate:       validator.New(),
		commandTimeout: opts.CommandTimeout,
	}

	g.Use(requestLogger(s.Logger))
	g.Use(gin.Recovery())
	if m != nil {
		g.Use(requestMetrics(m))
	}
	g.Use(cors(opts.CORSOrigin))

	g.GET("/health", s.getHealth)
	if m != nil {
		g.GET("/metrics", gin.WrapH(m.Handler()))
	}
	g.GET("/ws", s.serveWS)

	api := g.Group("/api")
	{
		api.GET("/dashboard", s.getDashboard)
		api.GET("/reference", s.getReference)

		api.GET("/filters", s.getFilters)
		api.PUT("/filters", s.putFilters)
		api.DELETE("/filters", s.deleteFilters)

		api.GET("/trades", s.getTrades)
		api.GET("/trades/:id", s.getTrade)
		api.POST("/trades/:id/open", s.openTrade)
		api.POST("/drawer/close", s.closeDrawer)
		api.POST("/drawer/advance", s.advanceTrade)

		api.GET("/recommendations", s.getRecommendations)
		api.POST("/recommendations/:id/apply", s.applyRecommendation)

		api.GET("/kpis", s.getKPIs)
		api.POST("/kpis/:kpi/select", s.selectKPI)

		api.GET("/market", s.getMarket)
		api.GET("/market/history", s.getMarketHistory)
		api.PUT("/market/forecast", s.putForecast)

		api.GET("/risk", s.getRisk)
		api.GET("/vessels", s.getVessels)
	}

	return s
}

// ServeHTTP lets the server be mounted directly on an http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.R.ServeHTTP(w, r)
}
