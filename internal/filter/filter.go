// Package filter narrows the trade list to the rows matching a FilterState.
package filter

import "ctrmdash/internal/domain"

// Matches reports whether t satisfies every non-empty field of f.
// Location has no trade attribute to compare against and always matches.
func Matches(t domain.Trade, f domain.FilterState) bool {
	if f.Commodity != "" && t.Commodity != f.Commodity {
		return false
	}
	if f.Counterparty != "" && t.Counterparty != f.Counterparty {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	return true
}

// Apply returns the trades matching f in their original order.
// The input slice is never modified; the result is always a fresh slice.
func Apply(trades []domain.Trade, f domain.FilterState) []domain.Trade {
	out := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Update merges p into current and returns the result. Fields left nil in p keep
// their current value. current itself is not changed.
func Update(current domain.FilterState, p domain.FilterPatch) domain.FilterState {
	next := current
	if p.Commodity != nil {
		next.Commodity = *p.Commodity
	}
	if p.Location != nil {
		next.Location = *p.Location
	}
	if p.Counterparty != nil {
		next.Counterparty = *p.Counterparty
	}
	if p.Date != nil {
		next.Date = *p.Date
	}
	return next
}

// ResetPatch clears all four fields when merged.
func ResetPatch() domain.FilterPatch {
	return PatchFrom(domain.FilterState{})
}

// PatchFrom builds a patch that sets every field to the given state's value.
func PatchFrom(f domain.FilterState) domain.FilterPatch {
	return domain.FilterPatch{
		Commodity:    &f.Commodity,
		Location:     &f.Location,
		Counterparty: &f.Counterparty,
		Date:         &f.Date,
	}
}
