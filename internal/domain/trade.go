package domain

import "strings"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Trade is a single physical or paper commodity deal shown in the trade table.
type Trade struct {
	ID           int     `json:"id"`
	Date         string  `json:"date"`      // calendar day, YYYY-MM-DD
	Commodity    string  `json:"commodity"` // e.g., "WTI", "Brent"
	Venue        string  `json:"venue"`     // e.g., "NYMEX", "ICE"
	Side         Side    `json:"side"`
	Quantity     int64   `json:"qty"` // barrels
	Price        float64 `json:"price"`
	Counterparty string  `json:"cpty"`
	Status       Status  `json:"status"`
}

// Advance moves the trade one lifecycle step forward.
// It returns false and leaves the trade untouched when the status is terminal or unknown.
func (t *Trade) Advance() bool {
	next, ok := t.Status.Next()
	if !ok {
		return false
	}
	t.Status = next
	return true
}

const (
	DefaultHedgeQuantity     int64   = 50000
	DefaultHedgePrice        float64 = 82.0
	DefaultHedgeCounterparty         = "AI Hedge Co"
)

// TradeFromRecommendation synthesizes the Proposed trade created when a
// recommendation is applied as a hedge.
func TradeFromRecommendation(rec Recommendation, id int, date string) Trade {
	commodity, venue := "Brent", "ICE"
	if strings.Contains(rec.Instrument, "WTI") {
		commodity, venue = "WTI", "NYMEX"
	}

	side := SideBuy
	if rec.Action == ActionSell {
		side = SideSell
	}

	return Trade{
		ID:           id,
		Date:         date,
		Commodity:    commodity,
		Venue:        venue,
		Side:         side,
		Quantity:     DefaultHedgeQuantity,
		Price:        DefaultHedgePrice,
		Counterparty: DefaultHedgeCounterparty,
		Status:       StatusProposed,
	}
}
