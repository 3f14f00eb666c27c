// Package coordinator serializes every user action through one event loop.
// Each command updates the session and trade list, re-renders the affected
// views in full and fans the resulting events out to subscribers.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ctrmdash/internal/domain"
	"ctrmdash/internal/filter"
	"ctrmdash/internal/memorystore"
	"ctrmdash/internal/render"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tradeDateLayout = "2006-01-02"

type reply struct {
	res Result
	err error
}

type request struct {
	cmd   Command
	reply chan reply
}

type Coordinator struct {
	logger *zap.Logger
	store  *memorystore.Store
	cfg    Config

	requests chan request
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	session Session

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

func New(logger *zap.Logger, store *memorystore.Store, cfg Config) *Coordinator {
	return &Coordinator{
		logger:   logger.With(zap.String("component", "coordinator")),
		store:    store,
		cfg:      cfg.withDefaults(),
		requests: make(chan request),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Event),
	}
}

// Run is the event loop. It handles one command at a time until ctx ends.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.done) })

	c.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("event loop stopped")
			c.closeSubscribers()
			return ctx.Err()
		case req := <-c.requests:
			res, err := c.handle(req.cmd)
			c.cfg.Recorder.CommandHandled(req.cmd.Kind.String(), err)
			if err != nil {
				c.logger.Warn("command rejected", zap.Stringer("command", req.cmd.Kind), zap.Error(err))
			} else {
				for _, ev := range res.Events {
					c.publish(ev)
				}
			}
			req.reply <- reply{res: res, err: err}
		}
	}
}

// Dispatch hands cmd to the event loop and waits until it has been applied.
func (c *Coordinator) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	req := request{cmd: cmd, reply: make(chan reply, 1)}

	select {
	case c.requests <- req:
	case <-c.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Session returns a copy of the current session state.
func (c *Coordinator) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Coordinator) setSession(s Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// Subscribe registers a listener. Events are delivered without blocking the
// loop; when the channel's buffer is full the event is dropped for that
// listener. The returned func unsubscribes and closes the channel.
func (c *Coordinator) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.cfg.Recorder.Subscribers(len(c.subs))
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			defer c.subsMu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
				c.cfg.Recorder.Subscribers(len(c.subs))
			}
		})
	}
}

func (c *Coordinator) publish(ev Event) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	c.cfg.Recorder.EventPublished(string(ev.Type))
	for id, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.cfg.Recorder.EventDropped(string(ev.Type))
			c.logger.Warn("subscriber too slow, event dropped",
				zap.Int("subscriber", id), zap.String("event", string(ev.Type)))
		}
	}
}

func (c *Coordinator) closeSubscribers() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.cfg.Recorder.Subscribers(0)
}

func (c *Coordinator) newEvent(t EventType, s Session) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    t,
		At:      c.cfg.Now(),
		Session: s,
	}
}

func (c *Coordinator) toastEvent(s Session, msg string) Event {
	ev := c.newEvent(EventToast, s)
	toast := render.NewToast(msg, render.ToastSuccess, c.cfg.ToastDuration, ev.At)
	ev.Toast = &toast
	return ev
}

func (c *Coordinator) table(f domain.FilterState) *render.TradeTable {
	t := render.Table(c.store.Trades.All(), f)
	return &t
}

func (c *Coordinator) handle(cmd Command) (Result, error) {
	switch cmd.Kind {
	case CmdSetFilters:
		return c.updateFilters(cmd.Patch), nil
	case CmdResetFilters:
		return c.updateFilters(filter.ResetPatch()), nil
	case CmdSelectKPI:
		return c.selectKPI(cmd.KPI)
	case CmdApplyRecommendation:
		return c.applyRecommendation(cmd.ID)
	case CmdOpenTrade:
		return c.openTrade(cmd.ID)
	case CmdCloseTrade:
		return c.closeTrade(), nil
	case CmdAdvanceTrade:
		return c.advanceTrade(), nil
	case CmdToggleForecast:
		return c.toggleForecast(cmd.Show), nil
	default:
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownCommand, cmd.Kind)
	}
}

func (c *Coordinator) updateFilters(p domain.FilterPatch) Result {
	s := c.Session()
	prev := s.Filters
	s.Filters = filter.Update(prev, p)
	c.setSession(s)

	ev := c.newEvent(EventFiltersChanged, s)
	ev.Table = c.table(s.Filters)
	return Result{Session: s, Changed: s.Filters != prev, Events: []Event{ev}}
}

func (c *Coordinator) selectKPI(key string) (Result, error) {
	kpi, meta, err := domain.ParseKPI(key)
	if err != nil {
		return Result{Session: c.Session()}, fmt.Errorf("%w: %s", ErrUnknownKPI, key)
	}

	if meta.Patch == nil {
		s := c.Session()
		return Result{
			Session: s,
			Events:  []Event{c.toastEvent(s, "Hedge ratio filter applied to dashboard")},
		}, nil
	}

	res := c.updateFilters(*meta.Patch)
	msg := "Filtered by " + strings.ToUpper(string(kpi))
	res.Events = append(res.Events, c.toastEvent(res.Session, msg))
	return res, nil
}

func (c *Coordinator) applyRecommendation(id int) (Result, error) {
	rec, err := c.store.Sample.Recommendation(id)
	if err != nil {
		return Result{Session: c.Session()}, fmt.Errorf("%w: %d", ErrUnknownRecommendation, id)
	}

	date := c.cfg.Now().UTC().Format(tradeDateLayout)
	trade := c.store.Trades.Append(func(tradeID int) domain.Trade {
		return domain.TradeFromRecommendation(rec, tradeID, date)
	})
	c.logger.Info("recommendation applied",
		zap.Int("recommendation", rec.ID), zap.Int("trade", trade.ID), zap.String("commodity", trade.Commodity))

	s := c.Session()
	ev := c.newEvent(EventTradesChanged, s)
	ev.Table = c.table(s.Filters)
	return Result{
		Session: s,
		Changed: true,
		Trade:   &trade,
		Events:  []Event{ev, c.toastEvent(s, "Applied recommendation: "+rec.Title)},
	}, nil
}

func (c *Coordinator) openTrade(id int) (Result, error) {
	trade, ok := c.store.Trades.Get(id)
	if !ok {
		return Result{Session: c.Session()}, fmt.Errorf("%w: %d", ErrUnknownTrade, id)
	}

	s := c.Session()
	s.OpenTradeID = trade.ID
	c.setSession(s)

	detail := render.Detail(trade)
	ev := c.newEvent(EventTradeOpened, s)
	ev.Detail = &detail
	return Result{Session: s, Changed: true, Trade: &trade, Events: []Event{ev}}, nil
}

func (c *Coordinator) closeTrade() Result {
	s := c.Session()
	if s.OpenTradeID == 0 {
		return Result{Session: s}
	}
	s.FocusTradeID = s.OpenTradeID
	s.OpenTradeID = 0
	c.setSession(s)

	return Result{Session: s, Changed: true, Events: []Event{c.newEvent(EventTradeClosed, s)}}
}

func (c *Coordinator) advanceTrade() Result {
	s := c.Session()
	if s.OpenTradeID == 0 {
		return Result{Session: s}
	}

	trade, changed, err := c.store.Trades.Update(s.OpenTradeID, func(t *domain.Trade) bool {
		return t.Advance()
	})
	if err != nil {
		c.logger.Warn("open trade missing from store", zap.Int("trade", s.OpenTradeID), zap.Error(err))
		return Result{Session: s}
	}
	if !changed {
		return Result{Session: s, Trade: &trade}
	}
	c.logger.Info("trade advanced", zap.Int("trade", trade.ID), zap.String("status", string(trade.Status)))

	detail := render.Detail(trade)
	ev := c.newEvent(EventTradesChanged, s)
	ev.Table = c.table(s.Filters)
	ev.Detail = &detail
	msg := fmt.Sprintf("Trade %s successfully", strings.ToLower(string(trade.Status)))
	return Result{
		Session: s,
		Changed: true,
		Trade:   &trade,
		Events:  []Event{ev, c.toastEvent(s, msg)},
	}
}

func (c *Coordinator) toggleForecast(show bool) Result {
	s := c.Session()
	prev := s.ForecastVisible
	s.ForecastVisible = show
	c.setSession(s)

	chart := render.Market(c.store.Sample, show)
	ev := c.newEvent(EventForecastToggled, s)
	ev.Chart = &chart
	return Result{Session: s, Changed: show != prev, Events: []Event{ev}}
}
