package order

// Status is an order lifecycle state. Transitions form a one-way graph:
// terminal states have no outgoing edges, and nothing moves backwards.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// transitions holds the allowed outgoing edges per status. Preparing and
// ready are optional stages: confirmed may jump straight to completed.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusReady, StatusCompleted, StatusRejected, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCompleted, StatusRejected, StatusCancelled},
	StatusReady:     {StatusCompleted, StatusRejected, StatusCancelled},
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// ParseStatus validates a raw status value at the boundary.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusCompleted, StatusRejected, StatusCancelled:
		return Status(raw), nil
	default:
		return "", ErrInvalidStatus
	}
}
