package outcome

// Route tokens understood by the shell that embeds the checkout flow.
const (
	RouteSuccess       = "/success"
	RoutePaymentFailed = "/payment-failed"
	RouteCheckout      = "/checkout"
	RouteCart          = "/cart"
)

// Destination is where a finished (or refused) checkout attempt should land,
// plus the context value carried there.
type Destination struct {
	Route   string `json:"route"`
	OrderID string `json:"order_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Notice  string `json:"notice,omitempty"`
}

// ForPaid routes to the success view with the authoritative order id issued
// by the verification service. The cosmetic display reference never appears
// here.
func ForPaid(orderID string) Destination {
	return Destination{Route: RouteSuccess, OrderID: orderID}
}

// ForFailed routes to the failure view carrying the reason code.
func ForFailed(reason string) Destination {
	return Destination{Route: RoutePaymentFailed, Reason: reason}
}

// ForCancelled keeps the buyer on the checkout view with a dismissible
// notice; a cancelled attempt can be retried after a reset.
func ForCancelled() Destination {
	return Destination{Route: RouteCheckout, Notice: "Payment cancelled"}
}

// ForEmptyCart is the recovery destination when a session is requested with
// nothing to pay for.
func ForEmptyCart() Destination {
	return Destination{Route: RouteCart, Notice: "Your checkout session expired"}
}
