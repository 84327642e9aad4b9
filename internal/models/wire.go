package models

import (
	"github.com/prakashtraders/checkout-service/internal/cart"
	"github.com/prakashtraders/checkout-service/internal/money"
)

// Wire contract for the two backend collaborators. The checkout service
// consumes both as opaque request/response APIs.

// CreateOrderRequest is the payload sent to the order-creation service. Item
// prices are deliberately absent: the server re-prices from ids and only the
// id+quantity snapshot is trusted.
type CreateOrderRequest struct {
	Amount  money.Amount        `json:"amount"`
	Name    string              `json:"name"`
	Address string              `json:"address"`
	Pincode string              `json:"pincode"`
	Items   []cart.SnapshotItem `json:"items"`
}

// CreateOrderResponse is the order-creation reply. A missing gateway order id
// is the single defined failure signal.
type CreateOrderResponse struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountPaise    int64  `json:"amount"`
}

// GatewayCallback is the signed payload the payment widget produces on
// completion. It is forwarded verbatim to the verification service; this
// service never inspects the signature itself.
type GatewayCallback struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
}

// VerifyPaymentResponse is the verification reply. OrderID is the
// authoritative order identifier and the only id safe to surface as the real
// order reference.
type VerifyPaymentResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
}

// VerifyStatusPaid is the only verification status treated as success.
const VerifyStatusPaid = "PAID"
