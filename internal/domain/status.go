package domain

// Status is the position of a trade in its forward-only lifecycle.
type Status string

const (
	StatusProposed Status = "Proposed"
	StatusCaptured Status = "Captured"
	StatusInvoiced Status = "Invoiced"
	StatusSettled  Status = "Settled"
)

// lifecycle maps each status to the one that follows it. Settled has no successor.
var lifecycle = map[Status]Status{
	StatusProposed: StatusCaptured,
	StatusCaptured: StatusInvoiced,
	StatusInvoiced: StatusSettled,
}

// IsValid checks if the Status is one of the four lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusProposed, StatusCaptured, StatusInvoiced, StatusSettled:
		return true
	default:
		return false
	}
}

// Next returns the status one step forward. For Settled or an unknown status
// it returns s unchanged and false.
func (s Status) Next() (Status, bool) {
	next, ok := lifecycle[s]
	if !ok {
		return s, false
	}
	return next, true
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	_, ok := lifecycle[s]
	return !ok
}
