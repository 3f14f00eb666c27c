// Package tui is a terminal front end for the dashboard server.
package tui

import (
	"context"
	"time"

	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/domain"
	"ctrmdash/internal/render"
	"ctrmdash/internal/views"

	tea "github.com/charmbracelet/bubbletea"
)

// Client is the part of the REST client the terminal UI drives.
type Client interface {
	Dashboard(ctx context.Context) (views.DashboardView, error)
	SetFilters(ctx context.Context, p domain.FilterPatch) (coordinator.Result, error)
	ResetFilters(ctx context.Context) (coordinator.Result, error)
	SelectKPI(ctx context.Context, kpi string) (coordinator.Result, error)
	ApplyRecommendation(ctx context.Context, id int) (coordinator.Result, error)
	OpenTrade(ctx context.Context, id int) (coordinator.Result, error)
	CloseTrade(ctx context.Context) (coordinator.Result, error)
	AdvanceTrade(ctx context.Context) (coordinator.Result, error)
	ToggleForecast(ctx context.Context, show bool) (coordinator.Result, error)
}

// EventMsg carries one event from the stream into the program.
type EventMsg struct {
	Event coordinator.Event
}

// ConnMsg reports the stream connection state.
type ConnMsg struct {
	Connected bool
}

type dashboardMsg struct {
	view views.DashboardView
	err  error
}

type resultMsg struct {
	res coordinator.Result
	err error
}

type tickMsg time.Time

type toastEntry struct {
	toast render.Toast
	until time.Time
}

const maxSeenEvents = 256

// commodity filter values cycled by the "c" key
var commodityCycle = []string{"", "WTI", "Brent"}

type model struct {
	client       Client
	timeout      time.Duration
	refreshEvery time.Duration
	now          func() time.Time
	view         views.DashboardView
	loaded       bool
	cursor       int
	recCursor    int
	toasts       []toastEntry
	err          error
	connected    bool
	lastLoad     time.Time
	seen         map[string]bool
	width        int
	height       int
}

func newModel(client Client, timeout, refreshEvery time.Duration, now func() time.Time) model {
	if now == nil {
		now = time.Now
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return model{
		client:       client,
		timeout:      timeout,
		refreshEvery: refreshEvery,
		now:          now,
		seen:         make(map[string]bool),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m model) tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) load() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		v, err := m.client.Dashboard(ctx)
		return dashboardMsg{view: v, err: err}
	}
}

func (m model) command(call func(ctx context.Context) (coordinator.Result, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		res, err := call(ctx)
		return resultMsg{res: res, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case dashboardMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.view = msg.view
		m.loaded = true
		m.lastLoad = m.now()
		m.clampCursor()
		return m, nil
	case resultMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		// the session only moves with events not applied yet
		for _, ev := range msg.res.Events {
			m.apply(ev)
		}
		return m, nil
	case EventMsg:
		m.apply(msg.Event)
		return m, nil
	case ConnMsg:
		m.connected = msg.Connected
		if msg.Connected {
			// events may have been missed while disconnected
			return m, m.load()
		}
		return m, nil
	case tickMsg:
		m.expireToasts()
		// without the stream, poll
		if !m.connected && m.refreshEvery > 0 && m.now().Sub(m.lastLoad) >= m.refreshEvery {
			m.lastLoad = m.now()
			return m, tea.Batch(m.load(), m.tick())
		}
		return m, m.tick()
	}
	return m, nil
}

// apply folds one event into the local view. Events arrive both in command
// results and on the stream, so each is applied once.
func (m *model) apply(ev coordinator.Event) {
	if ev.ID != "" {
		if m.seen[ev.ID] {
			return
		}
		if len(m.seen) >= maxSeenEvents {
			m.seen = make(map[string]bool)
		}
		m.seen[ev.ID] = true
	}

	m.view.Session = ev.Session
	m.view.Filters = ev.Session.Filters
	if ev.Table != nil {
		table := *ev.Table
		m.view.Trades = &table
	}

	switch ev.Type {
	case coordinator.EventTradeOpened:
		m.view.Detail = ev.Detail
	case coordinator.EventTradeClosed:
		m.view.Detail = nil
		m.focus(ev.Session.FocusTradeID)
	case coordinator.EventTradesChanged:
		if ev.Detail != nil {
			m.view.Detail = ev.Detail
		}
	case coordinator.EventForecastToggled:
		if ev.Chart != nil {
			m.view.Market = ev.Chart
		}
	case coordinator.EventToast:
		if ev.Toast != nil {
			d := time.Duration(ev.Toast.DurationMS) * time.Millisecond
			m.toasts = append(m.toasts, toastEntry{toast: *ev.Toast, until: m.now().Add(d)})
		}
	}
	m.clampCursor()
}

func (m *model) expireToasts() {
	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.until) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m *model) rows() []render.TradeRow {
	if m.view.Trades == nil {
		return nil
	}
	return m.view.Trades.Rows
}

func (m *model) focus(id int) {
	for i, r := range m.rows() {
		if r.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *model) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if r := len(m.view.Recommendations); m.recCursor >= r {
		m.recCursor = 0
	}
}

func (m model) selectedTrade() (int, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return 0, false
	}
	return rows[m.cursor].ID, true
}

func nextCommodity(current string) string {
	for i, c := range commodityCycle {
		if c == current {
			return commodityCycle[(i+1)%len(commodityCycle)]
		}
	}
	return commodityCycle[0]
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	drawerOpen := m.view.Session.OpenTradeID != 0

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case "enter":
		if id, ok := m.selectedTrade(); ok && !drawerOpen {
			return m, m.command(func(ctx context.Context) (coordinator.Result, error) {
				return m.client.OpenTrade(ctx, id)
			})
		}
	case "esc":
		if drawerOpen {
			return m, m.command(m.client.CloseTrade)
		}
	case "a":
		if drawerOpen {
			return m, m.command(m.client.AdvanceTrade)
		}
	case "f":
		show := !m.view.Session.ForecastVisible
		return m, m.command(func(ctx context.Context) (coordinator.Result, error) {
			return m.client.ToggleForecast(ctx, show)
		})
	case "c":
		next := nextCommodity(m.view.Session.Filters.Commodity)
		return m, m.command(func(ctx context.Context) (coordinator.Result, error) {
			return m.client.SetFilters(ctx, domain.FilterPatch{Commodity: &next})
		})
	case "x":
		return m, m.command(m.client.ResetFilters)
	case "1", "2", "3", "4":
		kpi := string(domain.KPIOrder[msg.String()[0]-'1'])
		return m, m.command(func(ctx context.Context) (coordinator.Result, error) {
			return m.client.SelectKPI(ctx, kpi)
		})
	case "tab":
		if n := len(m.view.Recommendations); n > 0 {
			m.recCursor = (m.recCursor + 1) % n
		}
	case "h":
		if m.recCursor < len(m.view.Recommendations) {
			id := m.view.Recommendations[m.recCursor].ID
			return m, m.command(func(ctx context.Context) (coordinator.Result, error) {
				return m.client.ApplyRecommendation(ctx, id)
			})
		}
	case "r":
		return m, m.load()
	}
	return m, nil
}
