package reservations

// Status is the lifecycle state of a reservation. Bookings are created
// confirmed; there is no pending state because the seat hold lives in the
// seat map, not the ledger.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusValidated Status = "validated"
	StatusCancelled Status = "cancelled"
)

// CanTransitionTo reports whether the move is a legal lifecycle step.
// Validated and cancelled are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusConfirmed:
		return target == StatusValidated || target == StatusCancelled
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusValidated || s == StatusCancelled
}

// IsActive reports whether the reservation still occupies its seats.
func (s Status) IsActive() bool {
	return s == StatusConfirmed || s == StatusValidated
}

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusValidated, StatusCancelled:
		return true
	}
	return false
}
