package checkout

import "errors"

// Failure reason codes carried by terminal states and their routing
// destinations.
const (
	ReasonOrderCreationFailed = "order-creation-failed"
	ReasonVerificationFailed  = "verification-failed"
	ReasonTimeout             = "timeout"
	ReasonGatewayUnavailable  = "gateway-unavailable"
	ReasonGatewayCancelled    = "gateway-cancelled"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrInvalidAddress    = errors.New("shipping address is incomplete")
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrAttemptInFlight = errors.New("payment attempt in flight, session is locked for edits")
	ErrNotResettable   = errors.New("only failed or cancelled attempts can be reset")
)
