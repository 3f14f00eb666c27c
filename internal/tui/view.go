package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent      = lipgloss.Color("39")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
	toastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("28")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)

	statusStyles = map[string]lipgloss.Style{
		"status-proposed": lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		"status-captured": lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"status-invoiced": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"status-settled":  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

func (m model) View() string {
	if !m.loaded {
		if m.err != nil {
			return errorStyle.Render("Dashboard unavailable: "+m.err.Error()) + "\n" + dimStyle.Render("r: retry  q: quit")
		}
		return "Loading dashboard..."
	}

	width := m.width - 4
	if width < 80 {
		width = 80
	}
	half := width/2 - 1

	var sections []string
	sections = append(sections, m.renderHeader())
	for _, b := range m.view.Banners {
		sections = append(sections, bannerStyle.Render(b.Message))
	}
	if k := m.renderKPIs(); k != "" {
		sections = append(sections, k)
	}

	left := []string{m.renderTrades(half)}
	if m.view.Detail != nil {
		left = append(left, m.renderDrawer(half))
	}
	right := []string{m.renderRecommendations(half), m.renderHeatmap(half), m.renderMarket(half)}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, left...), "  ",
		lipgloss.JoinVertical(lipgloss.Left, right...)))

	for _, t := range m.toasts {
		sections = append(sections, toastStyle.Render(t.toast.Message))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(m.err.Error()))
	}
	sections = append(sections, dimStyle.Render(
		"↑/↓ select  enter open  esc close  a advance  1-4 KPI  c commodity  x reset  tab/h recommendation  f forecast  q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) renderHeader() string {
	stream := "stream: offline"
	if m.connected {
		stream = "stream: live"
	}
	f := m.view.Filters
	filters := fmt.Sprintf("commodity=%s location=%s counterparty=%s date=%s",
		orAll(f.Commodity), orAll(f.Location), orAll(f.Counterparty), orAll(f.Date))
	return headerStyle.Render(fmt.Sprintf("CTRM Dashboard | %s | %s | %s",
		filters, stream, m.now().Format("15:04:05")))
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

func (m model) renderKPIs() string {
	if len(m.view.KPIs) == 0 {
		return ""
	}
	tiles := make([]string, 0, len(m.view.KPIs))
	for i, k := range m.view.KPIs {
		body := fmt.Sprintf("%d %s\n%s %.2f", i+1, titleStyle.Render(k.Label),
			lipgloss.NewStyle().Foreground(lipgloss.Color(k.Color)).Render(Sparkline(k.Points, 24)), k.Last)
		tiles = append(tiles, boxStyle.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func (m model) renderTrades(width int) string {
	var lines []string
	t := m.view.Trades
	if t == nil {
		lines = append(lines, titleStyle.Render("Trades"), dimStyle.Render("unavailable"))
		return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
	}
	lines = append(lines, titleStyle.Render(fmt.Sprintf("Trades (%d of %d)", t.Visible, t.Total)))
	lines = append(lines, fmt.Sprintf("%-3s %-10s %-6s %-5s %-4s %8s %7s %-16s %s",
		"#", "Date", "Cmdty", "Venue", "Side", "Qty", "Price", "Counterparty", "Status"))
	for i, r := range t.Rows {
		status := r.Status
		if s, ok := statusStyles[r.StatusClass]; ok {
			status = s.Render(r.Status)
		}
		line := fmt.Sprintf("%-3d %-10s %-6s %-5s %-4s %8s %7s %-16s ",
			r.ID, r.Date, r.Commodity, r.Venue, r.Side, r.Quantity, r.Price, truncate(r.Counterparty, 16))
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line+status)
	}
	if len(t.Rows) == 0 {
		lines = append(lines, dimStyle.Render("No trades match the current filters"))
	}
	return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m model) renderDrawer(width int) string {
	d := m.view.Detail
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Trade #%d", d.ID)),
		fmt.Sprintf("%s %s on %s, %s", d.Side, d.Commodity, d.Venue, d.Date),
		fmt.Sprintf("Quantity: %s", d.QuantityLabel),
		fmt.Sprintf("Price: %s  Notional: %s", d.Price, d.Notional),
		fmt.Sprintf("Counterparty: %s", d.Counterparty),
		fmt.Sprintf("Status: %s", d.Status),
	}
	if d.CanAdvance {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("a: %s (-> %s)", d.ActionLabel, d.NextStatus)))
	}
	return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m model) renderRecommendations(width int) string {
	lines := []string{titleStyle.Render("Recommendations")}
	if len(m.view.Recommendations) == 0 {
		lines = append(lines, dimStyle.Render("unavailable"))
	}
	for i, r := range m.view.Recommendations {
		title := r.Title
		if i == m.recCursor {
			title = cursorStyle.Render(title)
		}
		lines = append(lines, title, dimStyle.Render(fmt.Sprintf("  P&L %s  %s", r.PnL, r.ConfidenceLabel)))
	}
	return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m model) renderHeatmap(width int) string {
	h := m.view.Heatmap
	lines := []string{titleStyle.Render("Risk")}
	if h == nil {
		lines = append(lines, dimStyle.Render("unavailable"))
		return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
	}
	for r := 0; r < h.Rows; r++ {
		var b strings.Builder
		for c := 0; c < h.Cols; c++ {
			cell := h.Cells[r*h.Cols+c]
			b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(CSSToHex(cell.Color))).Render("  "))
		}
		lines = append(lines, b.String())
	}
	return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m model) renderMarket(width int) string {
	c := m.view.Market
	lines := []string{titleStyle.Render("Market")}
	if c == nil {
		lines = append(lines, dimStyle.Render("unavailable"))
		return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
	}
	for _, ds := range c.Datasets {
		points := make([]float64, 0, len(ds.Data))
		for _, v := range ds.Data {
			if v != nil {
				points = append(points, *v)
			}
		}
		label := truncate(ds.Label, 14)
		lines = append(lines, fmt.Sprintf("%-14s %s", label, Sparkline(points, width-20)))
	}
	forecast := "off"
	if c.ForecastVisible {
		forecast = "on"
	}
	lines = append(lines, dimStyle.Render("forecast: "+forecast))
	return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// Sparkline draws the last width points as block characters.
func Sparkline(points []float64, width int) string {
	if width <= 0 || len(points) == 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	out := make([]rune, len(points))
	for i, p := range points {
		idx := 0
		if hi > lo {
			idx = int((p - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

// CSSToHex converts "rgb(r, g, b)" into "#rrggbb". Other values pass through.
func CSSToHex(css string) string {
	var r, g, b int
	if _, err := fmt.Sscanf(css, "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
		return css
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
