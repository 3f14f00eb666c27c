package render

import (
	"fmt"

	"ctrmdash/internal/domain"
)

type RecommendationCard struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Rationale       []string `json:"rationale"`
	PnL             string   `json:"pnl"`
	ConfidencePct   int      `json:"confidence_pct"`
	ConfidenceLabel string   `json:"confidence_label"`
	Action          string   `json:"action"`
	Instrument      string   `json:"instrument"`
	ApplyLabel      string   `json:"apply_label"`
	AriaLabel       string   `json:"aria_label"`
}

func RecommendationCards(recs []domain.Recommendation) []RecommendationCard {
	out := make([]RecommendationCard, 0, len(recs))
	for _, r := range recs {
		pct := roundHalfUp(r.Confidence * 100)
		out = append(out, RecommendationCard{
			ID:              r.ID,
			Title:           r.Title,
			Rationale:       append([]string(nil), r.Rationale...),
			PnL:             r.PnL,
			ConfidencePct:   pct,
			ConfidenceLabel: fmt.Sprintf("Confidence: %d%%", pct),
			Action:          string(r.Action),
			Instrument:      r.Instrument,
			ApplyLabel:      "Apply as Hedge",
			AriaLabel:       fmt.Sprintf("Apply %s as hedge", r.Title),
		})
	}
	return out
}
