package domain

// FilterState is the set of constraints narrowing the visible trade set.
// An empty field means "no constraint".
type FilterState struct {
	Commodity    string `json:"commodity"`
	Location     string `json:"location"`
	Counterparty string `json:"counterparty"`
	Date         string `json:"date"`
}

// IsEmpty reports whether no field constrains the trade set.
func (f FilterState) IsEmpty() bool {
	return f == FilterState{}
}

// FilterPatch is a partial FilterState. Nil fields are left unchanged by a merge.
type FilterPatch struct {
	Commodity    *string `json:"commodity,omitempty" validate:"omitempty,max=64"`
	Location     *string `json:"location,omitempty" validate:"omitempty,max=64"`
	Counterparty *string `json:"counterparty,omitempty" validate:"omitempty,max=64"`
	Date         *string `json:"date,omitempty" validate:"omitempty,max=64"`
}
