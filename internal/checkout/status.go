package checkout

// State is the checkout controller's position in the order lifecycle for the
// current attempt.
type State string

const (
	StateIdle            State = "IDLE"
	StateSubmitting      State = "SUBMITTING"
	StateAwaitingGateway State = "AWAITING_GATEWAY_RESULT"
	StateVerifying       State = "VERIFYING"
	StatePaid            State = "PAID"
	StateFailed          State = "FAILED"
	StateCancelled       State = "CANCELLED"
)

// IsTerminal reports whether the state ends the current attempt.
func (s State) IsTerminal() bool {
	return s == StatePaid || s == StateFailed || s == StateCancelled
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// Paid has no outgoing edge: a paid session is done. Failed and Cancelled
// may be reset for a manual retry.
var transitions = map[State][]State{
	StateIdle:            {StateSubmitting},
	StateSubmitting:      {StateAwaitingGateway, StateFailed},
	StateAwaitingGateway: {StateVerifying, StateCancelled, StateFailed},
	StateVerifying:       {StatePaid, StateFailed},
	StateFailed:          {StateIdle},
	StateCancelled:       {StateIdle},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s State) CanTransitionTo(next State) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}
