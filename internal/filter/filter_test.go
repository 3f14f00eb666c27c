package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrmdash/internal/domain"
	"ctrmdash/internal/filter"
)

func sampleTrades() []domain.Trade {
	return []domain.Trade{
		{ID: 1, Date: "2025-07-08", Commodity: "WTI", Venue: "NYMEX", Side: domain.SideSell, Quantity: 50000, Price: 82.1, Counterparty: "Delta Trading", Status: domain.StatusCaptured},
		{ID: 2, Date: "2025-07-07", Commodity: "Brent", Venue: "ICE", Side: domain.SideBuy, Quantity: 30000, Price: 85.7, Counterparty: "Blue Refining", Status: domain.StatusSettled},
		{ID: 3, Date: "2025-07-05", Commodity: "WTI", Venue: "NYMEX", Side: domain.SideBuy, Quantity: 20000, Price: 79.9, Counterparty: "Acme Air", Status: domain.StatusInvoiced},
		{ID: 4, Date: "2025-07-03", Commodity: "GasOil", Venue: "ICE", Side: domain.SideSell, Quantity: 15000, Price: 92.3, Counterparty: "Omega Marine", Status: domain.StatusCaptured},
	}
}

func ptr(s string) *string { return &s }

func ids(trades []domain.Trade) []int {
	out := make([]int, 0, len(trades))
	for _, t := range trades {
		out = append(out, t.ID)
	}
	return out
}

// go test -v --run ^TestApplyEmptyFilterReturnsEverything$
func TestApplyEmptyFilterReturnsEverything(t *testing.T) {
	trades := sampleTrades()

	got := filter.Apply(trades, domain.FilterState{})

	require.Equal(t, trades, got)
	// Fresh slice: writing to the result must not touch the input.
	got[0].Commodity = "changed"
	assert.Equal(t, "WTI", trades[0].Commodity)
}

// go test -v --run ^TestApplyByCommodityPreservesOrder$
func TestApplyByCommodityPreservesOrder(t *testing.T) {
	got := filter.Apply(sampleTrades(), domain.FilterState{Commodity: "WTI"})
	assert.Equal(t, []int{1, 3}, ids(got))

	two := []domain.Trade{
		{ID: 1, Commodity: "WTI"},
		{ID: 2, Commodity: "Brent"},
	}
	got = filter.Apply(two, domain.FilterState{Commodity: "WTI"})
	require.Len(t, got, 1)
	assert.Equal(t, "WTI", got[0].Commodity)
}

// go test -v --run ^TestApplyIsCaseSensitive$
func TestApplyIsCaseSensitive(t *testing.T) {
	assert.Empty(t, filter.Apply(sampleTrades(), domain.FilterState{Commodity: "wti"}))
	assert.Empty(t, filter.Apply(sampleTrades(), domain.FilterState{Counterparty: "acme air"}))
}

// go test -v --run ^TestApplyCombinesFields$
func TestApplyCombinesFields(t *testing.T) {
	f := domain.FilterState{Commodity: "WTI", Counterparty: "Acme Air", Date: "2025-07-05"}
	assert.Equal(t, []int{3}, ids(filter.Apply(sampleTrades(), f)))

	f.Date = "2025-07-08"
	assert.Empty(t, filter.Apply(sampleTrades(), f))
}

// go test -v --run ^TestLocationIsInert$
func TestLocationIsInert(t *testing.T) {
	trades := sampleTrades()
	assert.Equal(t, trades, filter.Apply(trades, domain.FilterState{Location: "Houston"}))
	assert.Equal(t, []int{2}, ids(filter.Apply(trades, domain.FilterState{Location: "Rotterdam", Commodity: "Brent"})))
}

// go test -v --run ^TestMatchesAgreesWithApply$
func TestMatchesAgreesWithApply(t *testing.T) {
	trades := sampleTrades()
	filters := []domain.FilterState{
		{},
		{Commodity: "WTI"},
		{Commodity: "Brent", Date: "2025-07-07"},
		{Counterparty: "Omega Marine"},
		{Date: "2025-07-01"},
		{Location: "Cushing", Counterparty: "Delta Trading"},
	}

	for _, f := range filters {
		got := filter.Apply(trades, f)
		var want []int
		for _, tr := range trades {
			keep := (f.Commodity == "" || tr.Commodity == f.Commodity) &&
				(f.Counterparty == "" || tr.Counterparty == f.Counterparty) &&
				(f.Date == "" || tr.Date == f.Date)
			assert.Equal(t, keep, filter.Matches(tr, f), "trade %d filter %+v", tr.ID, f)
			if keep {
				want = append(want, tr.ID)
			}
		}
		if want == nil {
			want = []int{}
		}
		assert.Equal(t, want, ids(got), "filter %+v", f)
	}
}

// go test -v --run ^TestUpdateMergesAndIsIdempotent$
func TestUpdateMergesAndIsIdempotent(t *testing.T) {
	current := domain.FilterState{Commodity: "Brent", Counterparty: "Acme Air"}
	patch := domain.FilterPatch{Commodity: ptr("WTI"), Date: ptr("2025-07-08")}

	once := filter.Update(current, patch)
	twice := filter.Update(once, patch)

	assert.Equal(t, domain.FilterState{Commodity: "WTI", Counterparty: "Acme Air", Date: "2025-07-08"}, once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "Brent", current.Commodity, "input state must not change")
}

// go test -v --run ^TestResetRestoresFullList$
func TestResetRestoresFullList(t *testing.T) {
	trades := sampleTrades()
	state := filter.Update(domain.FilterState{}, domain.FilterPatch{Commodity: ptr("Brent")})
	require.Len(t, filter.Apply(trades, state), 1)

	state = filter.Update(state, filter.ResetPatch())
	assert.True(t, state.IsEmpty())
	assert.Equal(t, trades, filter.Apply(trades, state))
}

// go test -v --run ^TestPatchFromOverwritesAllFields$
func TestPatchFromOverwritesAllFields(t *testing.T) {
	current := domain.FilterState{Commodity: "WTI", Location: "Houston", Counterparty: "Acme Air", Date: "2025-07-05"}
	got := filter.Update(current, filter.PatchFrom(domain.FilterState{Counterparty: "Omega Marine"}))
	assert.Equal(t, domain.FilterState{Counterparty: "Omega Marine"}, got)
}
