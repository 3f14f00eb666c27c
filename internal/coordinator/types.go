package coordinator

import (
	"errors"
	"time"

	"ctrmdash/internal/domain"
	"ctrmdash/internal/render"
)

var (
	ErrUnknownKPI            = errors.New("unknown kpi")
	ErrUnknownRecommendation = errors.New("unknown recommendation")
	ErrUnknownTrade          = errors.New("unknown trade")
	ErrUnknownCommand        = errors.New("unknown command")
	ErrStopped               = errors.New("coordinator stopped")
)

// Session is the per-process UI state the coordinator owns.
type Session struct {
	Filters         domain.FilterState `json:"filters"`
	OpenTradeID     int                `json:"open_trade_id"`  // 0 when the drawer is closed
	FocusTradeID    int                `json:"focus_trade_id"` // row to refocus after the drawer closes
	ForecastVisible bool               `json:"forecast_visible"`
}

type EventType string

const (
	EventFiltersChanged  EventType = "filters.changed"
	EventTradesChanged   EventType = "trades.changed"
	EventTradeOpened     EventType = "trade.opened"
	EventTradeClosed     EventType = "trade.closed"
	EventForecastToggled EventType = "forecast.toggled"
	EventToast           EventType = "toast"
)

// Event is a state change notification. Views are rendered in full.
type Event struct {
	ID      string              `json:"id"`
	Type    EventType           `json:"type"`
	At      time.Time           `json:"at"`
	Session Session             `json:"session"`
	Table   *render.TradeTable  `json:"table,omitempty"`
	Detail  *render.TradeDetail `json:"detail,omitempty"`
	Chart   *render.MarketChart `json:"chart,omitempty"`
	Toast   *render.Toast       `json:"toast,omitempty"`
}

// Result is what a dispatched command produced.
type Result struct {
	Session Session       `json:"session"`
	Changed bool          `json:"changed"`
	Trade   *domain.Trade `json:"trade,omitempty"` // created, opened or advanced trade
	Events  []Event       `json:"events"`
}

// Recorder receives coordinator activity for instrumentation.
type Recorder interface {
	CommandHandled(kind string, err error)
	EventPublished(eventType string)
	EventDropped(eventType string)
	Subscribers(n int)
}

type nopRecorder struct{}

func (nopRecorder) CommandHandled(string, error) {}
func (nopRecorder) EventPublished(string)        {}
func (nopRecorder) EventDropped(string)          {}
func (nopRecorder) Subscribers(int)              {}

// Config tunes a Coordinator. Zero fields take defaults.
type Config struct {
	ToastDuration time.Duration
	Now           func() time.Time
	Recorder      Recorder
}

const DefaultToastDuration = 3000 * time.Millisecond

func (c Config) withDefaults() Config {
	if c.ToastDuration <= 0 {
		c.ToastDuration = DefaultToastDuration
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Recorder == nil {
		c.Recorder = nopRecorder{}
	}
	return c
}
