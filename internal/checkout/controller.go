package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/prakashtraders/checkout-service/internal/cart"
	"github.com/prakashtraders/checkout-service/internal/metrics"
	"github.com/prakashtraders/checkout-service/internal/models"
	"github.com/prakashtraders/checkout-service/internal/outcome"
	"github.com/prakashtraders/checkout-service/internal/patterns"
)

// Config carries the gateway parameters the controller hands to the payment
// widget, plus the bounded waits for the three suspend points.
type Config struct {
	GatewayKeyID   string
	Currency       string
	RequestTimeout time.Duration
	GatewayWait    time.Duration
}

// Controller owns every checkout session and its order lifecycle state
// machine. It is the only writer of session state; the cart ledger and
// address form are read, never mutated, during an attempt.
type Controller struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	orders   OrderCreator
	verifier PaymentVerifier
	widget   Widget
	cfg      Config
}

// NewController wires the three external collaborators.
func NewController(orders OrderCreator, verifier PaymentVerifier, widget Widget, cfg Config) *Controller {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = patterns.DefaultTimeout
	}
	if cfg.GatewayWait <= 0 {
		cfg.GatewayWait = patterns.DefaultGatewayWait
	}
	return &Controller{
		sessions: make(map[string]*Session),
		orders:   orders,
		verifier: verifier,
		widget:   widget,
		cfg:      cfg,
	}
}

// CreateSession opens a checkout session for a non-empty cart. An empty cart
// never reaches Idle: the caller gets ErrEmptyCart and should route to the
// cart recovery destination.
func (c *Controller) CreateSession(items []cart.LineItem) (*View, error) {
	crt := cart.New(items)
	if crt.IsEmpty() {
		return nil, ErrEmptyCart
	}

	s := &Session{
		ID:    uuid.NewString(),
		cart:  crt,
		state: StateIdle,
	}

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"items":      len(crt.Items),
	}).Info("Checkout session created")

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(), nil
}

// SessionView returns the current snapshot of a session.
func (c *Controller) SessionView(sessionID string) (*View, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(), nil
}

// AdjustQuantity applies a quantity delta to one line item. Edits are only
// legal in Idle: once an attempt is in flight its amount and item snapshot
// are fixed, so edits are rejected rather than applied retroactively.
func (c *Controller) AdjustQuantity(sessionID, itemID string, delta int) (*View, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, ErrAttemptInFlight
	}
	s.cart.AdjustQuantity(itemID, delta)
	return s.viewLocked(), nil
}

// SetAddressField replaces one shipping address field. Same edit gate as
// AdjustQuantity.
func (c *Controller) SetAddressField(sessionID, field, value string) (*View, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, ErrAttemptInFlight
	}
	if err := s.addr.SetField(field, value); err != nil {
		return nil, err
	}
	return s.viewLocked(), nil
}

// Submit drives one payment attempt as far as it can go synchronously:
// validate the address, fix the attempt snapshot, create the gateway order,
// then open the payment widget. The returned view shows either
// AwaitingGatewayResult or a terminal Failed; the widget event and the
// watchdog advance the session from there.
func (c *Controller) Submit(ctx context.Context, sessionID string) (*View, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, ErrAttemptInFlight
	}
	if !s.addr.IsValid() {
		log.WithField("session_id", s.ID).Warn("Submit rejected: incomplete shipping address")
		return nil, ErrInvalidAddress
	}

	totals := s.cart.ComputeTotals()
	s.gen++
	attempt := &OrderAttempt{
		DisplayRef: displayRef(),
		Payable:    totals.Payable,
		Items:      s.cart.Snapshot(),
		gen:        s.gen,
	}
	s.attempt = attempt
	s.setState(StateSubmitting)
	metrics.PayableAmountRupees.Observe(attempt.Payable.Float64())

	log.WithFields(log.Fields{
		"session_id":  s.ID,
		"display_ref": attempt.DisplayRef,
		"payable":     attempt.Payable.String(),
		"items":       len(attempt.Items),
	}).Info("Creating gateway order")

	resp, err := c.orders.CreateOrder(ctx, models.CreateOrderRequest{
		Amount:  attempt.Payable,
		Name:    s.addr.Name,
		Address: s.addr.FullAddress,
		Pincode: s.addr.Pincode,
		Items:   attempt.Items,
	})
	if err != nil || resp == nil || resp.GatewayOrderID == "" {
		if err != nil {
			log.WithField("session_id", s.ID).Error("Order creation failed: ", err)
		} else {
			log.WithField("session_id", s.ID).Error("Order creation returned no gateway order id")
		}
		c.failLocked(s, ReasonOrderCreationFailed)
		return s.viewLocked(), nil
	}

	attempt.GatewayOrderID = resp.GatewayOrderID
	s.setState(StateAwaitingGateway)
	attempt.openedAt = time.Now()

	gen := attempt.gen
	if err := c.widget.Open(WidgetOptions{
		Key:         c.cfg.GatewayKeyID,
		AmountPaise: attempt.Payable.Paise(),
		Currency:    c.cfg.Currency,
		OrderID:     resp.GatewayOrderID,
		OnComplete:  func(p models.GatewayCallback) { c.gatewayComplete(sessionID, gen, p) },
		OnDismiss:   func() { c.gatewayDismiss(sessionID, gen) },
	}); err != nil {
		log.WithField("session_id", s.ID).Error("Failed to open payment widget: ", err)
		c.failLocked(s, ReasonGatewayUnavailable)
		return s.viewLocked(), nil
	}

	attempt.watchdog = time.AfterFunc(c.cfg.GatewayWait, func() {
		c.gatewayTimeout(sessionID, gen)
	})

	log.WithFields(log.Fields{
		"session_id":       s.ID,
		"gateway_order_id": resp.GatewayOrderID,
		"amount_paise":     attempt.Payable.Paise(),
	}).Info("Awaiting gateway result")

	return s.viewLocked(), nil
}

// Reset returns a failed or cancelled session to Idle for a manual retry,
// destroying the attempt. Retry is never automatic, and a paid session
// cannot be reset.
func (c *Controller) Reset(sessionID string) (*View, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFailed && s.state != StateCancelled {
		return nil, ErrNotResettable
	}
	s.setState(StateIdle)
	s.attempt = nil
	s.dest = nil

	log.WithField("session_id", s.ID).Info("Checkout session reset to idle")
	return s.viewLocked(), nil
}

// gatewayComplete handles the widget's payment-completion callback: verify
// the signed payload, then settle the attempt as Paid or Failed. The
// authoritative order id comes from the verification reply, never from the
// local display reference.
func (c *Controller) gatewayComplete(sessionID string, gen int, payload models.GatewayCallback) {
	s, err := c.session(sessionID)
	if err != nil {
		log.WithField("session_id", sessionID).Warn("Gateway completion for unknown session")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settleLocked(gen, "complete") {
		return
	}
	metrics.GatewayWaitSeconds.Observe(time.Since(s.attempt.openedAt).Seconds())
	s.setState(StateVerifying)

	ctx, cancel := patterns.WithTimeout(c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.verifier.VerifyPayment(ctx, payload)
	if err != nil || resp == nil || resp.Status != models.VerifyStatusPaid {
		if err != nil {
			log.WithField("session_id", s.ID).Error("Payment verification failed: ", err)
		} else {
			status := ""
			if resp != nil {
				status = resp.Status
			}
			log.WithFields(log.Fields{
				"session_id": s.ID,
				"status":     status,
			}).Warn("Payment not confirmed by verification service")
		}
		c.failLocked(s, ReasonVerificationFailed)
		return
	}

	s.attempt.OrderID = resp.OrderID
	s.setState(StatePaid)
	d := outcome.ForPaid(resp.OrderID)
	s.dest = &d
	metrics.CheckoutAttemptsTotal.WithLabelValues("paid").Inc()

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"order_id":   resp.OrderID,
	}).Info("Payment confirmed")
}

// gatewayDismiss handles the user closing the widget without paying. No
// server-side charge has occurred, so the attempt is simply cancelled.
func (c *Controller) gatewayDismiss(sessionID string, gen int) {
	s, err := c.session(sessionID)
	if err != nil {
		log.WithField("session_id", sessionID).Warn("Gateway dismiss for unknown session")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settleLocked(gen, "dismiss") {
		return
	}
	metrics.GatewayWaitSeconds.Observe(time.Since(s.attempt.openedAt).Seconds())
	s.attempt.FailureReason = ReasonGatewayCancelled
	s.setState(StateCancelled)
	d := outcome.ForCancelled()
	s.dest = &d
	metrics.CheckoutAttemptsTotal.WithLabelValues("cancelled").Inc()

	log.WithField("session_id", s.ID).Info("Payment cancelled by user")
}

// gatewayTimeout is the watchdog for the gateway wait. A settled attempt or
// a newer generation makes the firing a no-op.
func (c *Controller) gatewayTimeout(sessionID string, gen int) {
	s, err := c.session(sessionID)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settleLocked(gen, "timeout") {
		return
	}
	// The attempt ends without a widget event, so the parked entry must go
	// too; a late callback for it is refused rather than delivered.
	c.widget.Expire(s.attempt.GatewayOrderID)

	log.WithField("session_id", s.ID).Warn("Timed out waiting for gateway result")
	c.failLocked(s, ReasonTimeout)
}

// failLocked records a terminal failure and its routing destination. Callers
// hold s.mu.
func (c *Controller) failLocked(s *Session, reason string) {
	if s.attempt != nil {
		s.attempt.FailureReason = reason
		s.attempt.settled = true
		if s.attempt.watchdog != nil {
			s.attempt.watchdog.Stop()
		}
	}
	s.setState(StateFailed)
	d := outcome.ForFailed(reason)
	s.dest = &d
	metrics.CheckoutAttemptsTotal.WithLabelValues("failed").Inc()

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"reason":     reason,
	}).Warn("Checkout attempt failed")
}

func (c *Controller) session(sessionID string) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// displayRef generates the cosmetic order reference shown in the session
// header.
func displayRef() string {
	return fmt.Sprintf("CRM_%05d", rand.Intn(100000))
}
