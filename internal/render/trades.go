package render

import (
	"fmt"
	"strings"

	"ctrmdash/internal/domain"
	"ctrmdash/internal/filter"
)

// TradeRow is one rendered row of the trade table.
type TradeRow struct {
	ID           int    `json:"id"`
	Date         string `json:"date"`
	Commodity    string `json:"commodity"`
	Venue        string `json:"venue"`
	Side         string `json:"side"`
	Quantity     string `json:"qty"`
	Price        string `json:"price"`
	Counterparty string `json:"cpty"`
	Status       string `json:"status"`
	StatusClass  string `json:"status_class"`
	AriaLabel    string `json:"aria_label"`
}

// TradeTable is the fully rendered trade table for one filter state.
type TradeTable struct {
	Rows    []TradeRow         `json:"rows"`
	Total   int                `json:"total"`
	Visible int                `json:"visible"`
	Filters domain.FilterState `json:"filters"`
}

// TradeDetail is the drawer view of a single trade.
type TradeDetail struct {
	TradeRow
	QuantityLabel string `json:"qty_label"`
	Notional      string `json:"notional"`
	CanAdvance    bool   `json:"can_advance"`
	NextStatus    string `json:"next_status,omitempty"`
	ActionLabel   string `json:"action_label,omitempty"`
}

func statusClass(s domain.Status) string {
	return "status-" + strings.ToLower(string(s))
}

func tradeRow(t domain.Trade) TradeRow {
	return TradeRow{
		ID:           t.ID,
		Date:         t.Date,
		Commodity:    t.Commodity,
		Venue:        t.Venue,
		Side:         string(t.Side),
		Quantity:     formatQuantity(t.Quantity),
		Price:        formatPrice(t.Price),
		Counterparty: t.Counterparty,
		Status:       string(t.Status),
		StatusClass:  statusClass(t.Status),
		AriaLabel:    fmt.Sprintf("View trade details for %s %s", t.Commodity, t.Side),
	}
}

// Table renders every trade of all that passes f. It always rebuilds the
// whole table.
func Table(all []domain.Trade, f domain.FilterState) TradeTable {
	visible := filter.Apply(all, f)
	rows := make([]TradeRow, 0, len(visible))
	for _, t := range visible {
		rows = append(rows, tradeRow(t))
	}
	return TradeTable{
		Rows:    rows,
		Total:   len(all),
		Visible: len(rows),
		Filters: f,
	}
}

var advanceLabels = map[domain.Status]string{
	domain.StatusProposed: "Capture",
	domain.StatusCaptured: "Invoice",
	domain.StatusInvoiced: "Settle",
}

// Detail renders the drawer for t.
func Detail(t domain.Trade) TradeDetail {
	d := TradeDetail{
		TradeRow:      tradeRow(t),
		QuantityLabel: formatQuantity(t.Quantity) + " bbl",
		Notional:      notional(t.Quantity, t.Price),
	}
	if next, ok := t.Status.Next(); ok {
		d.CanAdvance = true
		d.NextStatus = string(next)
		d.ActionLabel = advanceLabels[t.Status]
	}
	return d
}
