package models

import (
	"github.com/prakashtraders/checkout-service/internal/address"
	"github.com/prakashtraders/checkout-service/internal/cart"
	"github.com/prakashtraders/checkout-service/internal/outcome"
)

// Request/response bodies for the checkout session HTTP surface.

// CreateSessionRequest opens a checkout session from a cart handed over by
// the shop front. Emptiness is checked by the controller, not the binder, so
// an empty cart gets the recovery destination instead of a bare 400.
type CreateSessionRequest struct {
	Items []cart.LineItem `json:"items"`
}

// AdjustQuantityRequest nudges one line item's quantity. The UI sends +1/-1
// but any integer delta is accepted.
type AdjustQuantityRequest struct {
	Delta int `json:"delta"`
}

// SetAddressFieldRequest replaces a single shipping address field.
type SetAddressFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// DismissRequest reports that the buyer closed the payment widget without
// paying.
type DismissRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
}

// SessionResponse is the session snapshot returned by every session
// endpoint. DisplayRef is cosmetic; the authoritative order id travels only
// inside Outcome.
type SessionResponse struct {
	SessionID     string               `json:"session_id"`
	State         string               `json:"state"`
	DisplayRef    string               `json:"display_ref,omitempty"`
	Totals        cart.Totals          `json:"totals"`
	Address       address.Address      `json:"address"`
	AddressValid  bool                 `json:"address_valid"`
	FailureReason string               `json:"failure_reason,omitempty"`
	Outcome       *outcome.Destination `json:"outcome,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Outcome *outcome.Destination `json:"outcome,omitempty"`
}
