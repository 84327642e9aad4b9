package checkout

import (
	"context"

	"github.com/prakashtraders/checkout-service/internal/models"
)

// OrderCreator is the order-creation collaborator. Implementations must
// treat a reply without a gateway order id as a failure.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error)
}

// PaymentVerifier confirms a signed gateway payload with the backend.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, payload models.GatewayCallback) (*models.VerifyPaymentResponse, error)
}

// WidgetOptions configures one opening of the payment widget. Exactly one of
// OnComplete and OnDismiss fires per attempt; the controller discards any
// later event for the same attempt.
type WidgetOptions struct {
	Key         string
	AmountPaise int64
	Currency    string
	OrderID     string
	OnComplete  func(payload models.GatewayCallback)
	OnDismiss   func()
}

// Widget is the payment-widget collaborator. Open registers the attempt and
// returns; it must never invoke a callback synchronously, since the
// controller calls it while holding the session lock. Expire withdraws a
// registration whose attempt has been settled without a widget event, so a
// late callback for it is refused instead of delivered.
type Widget interface {
	Open(opts WidgetOptions) error
	Expire(gatewayOrderID string)
}
