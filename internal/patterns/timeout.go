package patterns

import (
	"context"
	"time"
)

// WithTimeout creates a bounded context for an outbound collaborator call.
func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

// DefaultTimeout bounds the create-order and verify-payment requests.
const DefaultTimeout = 3 * time.Second

// DefaultGatewayWait bounds the wait for the payment widget's terminal
// event. The widget has no timeout of its own; without this watchdog a
// checkout attempt could hang forever.
const DefaultGatewayWait = 5 * time.Minute
