package domain

// Action is the kind of hedge a recommendation suggests.
type Action string

const (
	ActionBuy    Action = "buy"
	ActionSell   Action = "sell"
	ActionReduce Action = "reduce"
	ActionSpread Action = "spread"
)

// Recommendation is an AI-generated trading suggestion. It is read-only;
// applying one produces a new Trade.
type Recommendation struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Rationale  []string `json:"rationale"`
	PnL        string   `json:"pnl"`        // projected P&L, display string
	Confidence float64  `json:"confidence"` // 0..1
	Action     Action   `json:"action"`
	Instrument string   `json:"instrument"` // e.g., "WTI Sep"
}
