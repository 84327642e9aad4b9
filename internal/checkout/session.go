package checkout

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/prakashtraders/checkout-service/internal/address"
	"github.com/prakashtraders/checkout-service/internal/cart"
	"github.com/prakashtraders/checkout-service/internal/money"
	"github.com/prakashtraders/checkout-service/internal/outcome"
)

// OrderAttempt is the ephemeral record of a single payment attempt. It is
// created on submit and logically destroyed by reset (or by the session
// reaching Paid).
type OrderAttempt struct {
	// DisplayRef is a locally generated cosmetic reference shown in the
	// session header. It is presentation only and never used for routing or
	// reconciliation.
	DisplayRef string

	Payable        money.Amount
	Items          []cart.SnapshotItem
	GatewayOrderID string

	// OrderID is the authoritative identifier issued by the verification
	// service once payment is confirmed.
	OrderID string

	FailureReason string

	gen      int
	settled  bool
	openedAt time.Time
	watchdog *time.Timer
}

// Session is one buyer's checkout flow: cart, address form, and the current
// payment attempt. The controller serializes every transition under mu, so a
// session behaves as a single logical actor.
type Session struct {
	ID string

	mu      sync.Mutex
	cart    *cart.Cart
	addr    address.Address
	state   State
	attempt *OrderAttempt
	dest    *outcome.Destination
	gen     int
}

// View is an immutable snapshot of a session for the HTTP surface.
type View struct {
	SessionID     string
	State         State
	DisplayRef    string
	Totals        cart.Totals
	Address       address.Address
	AddressValid  bool
	FailureReason string
	Outcome       *outcome.Destination
}

// setState applies a guarded transition. Callers hold s.mu and have already
// checked preconditions, so an illegal edge here is a bug, not an input
// error.
func (s *Session) setState(next State) {
	if !s.state.CanTransitionTo(next) {
		log.WithFields(log.Fields{
			"session_id": s.ID,
			"from":       s.state,
			"to":         next,
		}).Error("Illegal checkout state transition")
		return
	}

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"from":       s.state,
		"to":         next,
	}).Info("Checkout state changed")
	s.state = next
}

// settleLocked consumes the single-shot gateway event slot for the attempt
// generation gen. The first event per attempt wins; later events and stale
// watchdogs are discarded here.
func (s *Session) settleLocked(gen int, event string) bool {
	a := s.attempt
	if a == nil || a.gen != gen || a.settled || s.state != StateAwaitingGateway {
		log.WithFields(log.Fields{
			"session_id": s.ID,
			"state":      s.state,
			"event":      event,
		}).Warn("Discarding stale or duplicate gateway event")
		return false
	}
	a.settled = true
	if a.watchdog != nil {
		a.watchdog.Stop()
	}
	return true
}

func (s *Session) viewLocked() *View {
	v := &View{
		SessionID:    s.ID,
		State:        s.state,
		Totals:       s.cart.ComputeTotals(),
		Address:      s.addr,
		AddressValid: s.addr.IsValid(),
		Outcome:      s.dest,
	}
	if s.attempt != nil {
		v.DisplayRef = s.attempt.DisplayRef
		v.FailureReason = s.attempt.FailureReason
	}
	return v
}
