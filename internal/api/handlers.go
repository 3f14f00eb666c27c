package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/domain"
	"ctrmdash/internal/memorystore"
	"ctrmdash/internal/views"
	"ctrmdash/pkg/storage/postgres"

	gin "github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type forecastRequest struct {
	Show *bool `json:"show" validate:"required"`
}

type historyQuery struct {
	Benchmark string `form:"benchmark" validate:"required,oneof=WTI Brent"`
	Series    string `form:"series" validate:"omitempty,oneof=close q10 q50 q90"`
	From      string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

type historyPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type historyResponse struct {
	Benchmark string         `json:"benchmark"`
	Series    string         `json:"series"`
	Points    []historyPoint `json:"points"`
}

// open-ended bounds of a history query
var (
	historyFrom = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	historyTo   = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func (s *Server) notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, apiError{Code: "not_found", Message: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.Logger.Error("internal_error", zap.String("where", where), zap.Error(err))
	c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
}

// fail maps domain errors onto status codes.
func (s *Server) fail(c *gin.Context, where string, err error) {
	switch {
	case errors.Is(err, coordinator.ErrUnknownKPI),
		errors.Is(err, coordinator.ErrUnknownRecommendation),
		errors.Is(err, coordinator.ErrUnknownTrade),
		errors.Is(err, memorystore.ErrTradeNotFound):
		s.notFound(c, err.Error())
	case errors.Is(err, views.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, apiError{Code: "unavailable", Message: err.Error()})
	default:
		s.internalError(c, where, err)
	}
}

func (s *Server) dispatch(c *gin.Context, where string, cmd coordinator.Command) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.commandTimeout)
	defer cancel()

	res, err := s.Commands.Dispatch(ctx, cmd)
	if errors.Is(err, context.DeadlineExceeded) {
		// the loop may still apply the command after the deadline
		s.Logger.Warn("command timed out", zap.String("where", where), zap.Duration("timeout", s.commandTimeout))
		c.JSON(http.StatusGatewayTimeout, apiError{Code: "timeout", Message: "command timed out; outcome unknown, reload the dashboard"})
		return
	}
	if err != nil {
		s.fail(c, where, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// --- Handlers ---

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.Views.Health())
}

func (s *Server) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.Views.Dashboard())
}

func (s *Server) getReference(c *gin.Context) {
	c.JSON(http.StatusOK, domain.DefaultReference())
}

func (s *Server) getFilters(c *gin.Context) {
	c.JSON(http.StatusOK, s.Commands.Session().Filters)
}

func (s *Server) putFilters(c *gin.Context) {
	var patch domain.FilterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.badRequest(c, "invalid filter patch: "+err.Error())
		return
	}
	if err := s.validate.Struct(patch); err != nil {
		s.badRequest(c, "validation failed: "+err.Error())
		return
	}
	s.dispatch(c, "putFilters", coordinator.SetFilters(patch))
}

func (s *Server) deleteFilters(c *gin.Context) {
	s.dispatch(c, "deleteFilters", coordinator.ResetFilters())
}

func (s *Server) getTrades(c *gin.Context) {
	table, err := s.Views.Trades()
	if err != nil {
		s.fail(c, "getTrades", err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) getTrade(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.badRequest(c, "invalid trade id")
		return
	}
	detail, err := s.Views.Trade(id)
	if err != nil {
		s.fail(c, "getTrade", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) openTrade(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.badRequest(c, "invalid trade id")
		return
	}
	s.dispatch(c, "openTrade", coordinator.OpenTrade(id))
}

func (s *Server) closeDrawer(c *gin.Context) {
	s.dispatch(c, "closeDrawer", coordinator.CloseTrade())
}

func (s *Server) advanceTrade(c *gin.Context) {
	s.dispatch(c, "advanceTrade", coordinator.AdvanceTrade())
}

func (s *Server) getRecommendations(c *gin.Context) {
	cards, err := s.Views.Recommendations()
	if err != nil {
		s.fail(c, "getRecommendations", err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (s *Server) applyRecommendation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.badRequest(c, "invalid recommendation id")
		return
	}
	s.dispatch(c, "applyRecommendation", coordinator.ApplyRecommendation(id))
}

func (s *Server) getKPIs(c *gin.Context) {
	tiles, err := s.Views.KPIs()
	if err != nil {
		s.fail(c, "getKPIs", err)
		return
	}
	c.JSON(http.StatusOK, tiles)
}

func (s *Server) selectKPI(c *gin.Context) {
	s.dispatch(c, "selectKPI", coordinator.SelectKPI(c.Param("kpi")))
}

func (s *Server) getMarket(c *gin.Context) {
	forecast := s.Commands.Session().ForecastVisible
	if q := c.Query("forecast"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			s.badRequest(c, "forecast must be true or false")
			return
		}
		forecast = v
	}
	chart, err := s.Views.Market(forecast)
	if err != nil {
		s.fail(c, "getMarket", err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (s *Server) getMarketHistory(c *gin.Context) {
	if s.History == nil {
		c.JSON(http.StatusServiceUnavailable, apiError{Code: "unavailable", Message: "price archive unavailable"})
		return
	}
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, "invalid query: "+err.Error())
		return
	}
	if err := s.validate.Struct(q); err != nil {
		s.badRequest(c, "validation failed: "+err.Error())
		return
	}
	if q.Series == "" {
		q.Series = postgres.SeriesClose
	}
	from, to := historyFrom, historyTo
	if q.From != "" {
		from, _ = time.Parse(time.DateOnly, q.From)
	}
	if q.To != "" {
		to, _ = time.Parse(time.DateOnly, q.To)
	}
	if to.Before(from) {
		s.badRequest(c, "to must not be before from")
		return
	}

	records, err := s.History.GetPrices(c.Request.Context(), q.Benchmark, q.Series, from, to)
	if err != nil {
		s.internalError(c, "getMarketHistory", err)
		return
	}
	resp := historyResponse{Benchmark: q.Benchmark, Series: q.Series, Points: make([]historyPoint, 0, len(records))}
	for _, r := range records {
		resp.Points = append(resp.Points, historyPoint{Date: r.Date.Format(time.DateOnly), Price: r.Price})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) putForecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.badRequest(c, "validation failed: "+err.Error())
		return
	}
	s.dispatch(c, "putForecast", coordinator.ToggleForecast(*req.Show))
}

func (s *Server) getRisk(c *gin.Context) {
	h, err := s.Views.Heatmap()
	if err != nil {
		s.fail(c, "getRisk", err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) getVessels(c *gin.Context) {
	m, err := s.Views.Map()
	if err != nil {
		s.fail(c, "getVessels", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) serveWS(c *gin.Context) {
	if s.Hub == nil {
		s.Logger.Warn("websocket requested but the event stream is unavailable")
		c.JSON(http.StatusServiceUnavailable, apiError{Code: "unavailable", Message: "event stream unavailable"})
		return
	}
	s.Hub.ServeWS(c.Writer, c.Request)
}
