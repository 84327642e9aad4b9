package gateway

import (
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/prakashtraders/checkout-service/internal/checkout"
	"github.com/prakashtraders/checkout-service/internal/models"
)

var (
	// ErrWidgetAlreadyOpen rejects opening a second widget for the same
	// gateway order.
	ErrWidgetAlreadyOpen = errors.New("payment widget already open for this gateway order")
	// ErrNoOpenWidget marks a callback for a gateway order with no parked
	// widget: either never opened, or already consumed by an earlier event.
	ErrNoOpenWidget = errors.New("no open payment widget for this gateway order")
)

// HostedWidget adapts the externally hosted payment widget to the
// checkout.Widget port. Open parks the attempt's callbacks keyed by gateway
// order id; the HTTP callback endpoints deliver the single terminal event,
// which consumes the entry. A second event therefore finds nothing and
// cannot fire a callback twice. Entries for attempts settled without an
// event are withdrawn via Expire.
type HostedWidget struct {
	mu      sync.Mutex
	pending map[string]checkout.WidgetOptions
}

// NewHostedWidget creates an empty widget adapter.
func NewHostedWidget() *HostedWidget {
	return &HostedWidget{pending: make(map[string]checkout.WidgetOptions)}
}

// Open registers the attempt. It never invokes a callback synchronously.
func (w *HostedWidget) Open(opts checkout.WidgetOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[opts.OrderID]; ok {
		return ErrWidgetAlreadyOpen
	}
	w.pending[opts.OrderID] = opts

	log.WithFields(log.Fields{
		"gateway_order_id": opts.OrderID,
		"amount_paise":     opts.AmountPaise,
		"currency":         opts.Currency,
	}).Info("Payment widget opened")
	return nil
}

// Complete fires the completion callback for the matching open widget.
func (w *HostedWidget) Complete(payload models.GatewayCallback) error {
	opts, err := w.take(payload.GatewayOrderID)
	if err != nil {
		return err
	}
	opts.OnComplete(payload)
	return nil
}

// Dismiss fires the user-dismiss callback for the matching open widget.
func (w *HostedWidget) Dismiss(gatewayOrderID string) error {
	opts, err := w.take(gatewayOrderID)
	if err != nil {
		return err
	}
	opts.OnDismiss()
	return nil
}

// Expire withdraws the parked entry for a gateway order whose attempt was
// settled without a widget event, such as by the gateway-wait watchdog. A
// later callback for that order then gets ErrNoOpenWidget instead of firing
// into a dead attempt. Unknown orders are a no-op.
func (w *HostedWidget) Expire(gatewayOrderID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[gatewayOrderID]; !ok {
		return
	}
	delete(w.pending, gatewayOrderID)

	log.WithField("gateway_order_id", gatewayOrderID).Info("Payment widget expired")
}

// take pops the parked entry so the first event wins. The widget lock is
// released before the caller invokes the callback, which takes the session
// lock.
func (w *HostedWidget) take(gatewayOrderID string) (checkout.WidgetOptions, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	opts, ok := w.pending[gatewayOrderID]
	if !ok {
		return checkout.WidgetOptions{}, ErrNoOpenWidget
	}
	delete(w.pending, gatewayOrderID)
	return opts, nil
}
