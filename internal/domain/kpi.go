package domain

import "fmt"

// KPI identifies a clickable KPI tile.
type KPI string

const (
	KPIWTI   KPI = "wti"
	KPIBrent KPI = "brent"
	KPIBasis KPI = "basis"
	KPIHedge KPI = "hedge"
)

// KPIMeta holds the display label of a KPI tile and the filter it applies when selected.
type KPIMeta struct {
	Label string
	// Patch is nil for tiles that only notify (hedge ratio).
	Patch *FilterPatch
}

func strPtr(s string) *string { return &s }

var kpiTiles = map[KPI]KPIMeta{
	KPIWTI:   {Label: "WTI Front Month", Patch: &FilterPatch{Commodity: strPtr("WTI")}},
	KPIBrent: {Label: "Brent Front Month", Patch: &FilterPatch{Commodity: strPtr("Brent")}},
	KPIBasis: {Label: "HOU-RTM Basis", Patch: &FilterPatch{Location: strPtr("Houston")}},
	KPIHedge: {Label: "Hedge Ratio"},
}

// KPIOrder is the left-to-right order of the KPI tiles.
var KPIOrder = []KPI{KPIWTI, KPIBrent, KPIBasis, KPIHedge}

// ParseKPI parses a KPI key into its metadata.
func ParseKPI(s string) (KPI, KPIMeta, error) {
	k := KPI(s)
	meta, ok := kpiTiles[k]
	if !ok {
		return "", KPIMeta{}, fmt.Errorf("invalid KPI: %s", s)
	}
	return k, meta, nil
}
