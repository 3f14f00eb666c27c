package domain

// Values offered by the filter controls.
var (
	Commodities    = []string{"WTI", "Brent", "GasOil"}
	Locations      = []string{"Houston", "Rotterdam", "Cushing", "Fujairah"}
	Counterparties = []string{"Acme Air", "Blue Refining", "Delta Trading", "Omega Marine"}
)

// Reference bundles the filter option lists for clients.
type Reference struct {
	Commodities    []string `json:"commodities"`
	Locations      []string `json:"locations"`
	Counterparties []string `json:"counterparties"`
}

// DefaultReference returns copies of the filter option lists.
func DefaultReference() Reference {
	return Reference{
		Commodities:    append([]string(nil), Commodities...),
		Locations:      append([]string(nil), Locations...),
		Counterparties: append([]string(nil), Counterparties...),
	}
}
