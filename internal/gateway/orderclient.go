package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/prakashtraders/checkout-service/internal/models"
	"github.com/prakashtraders/checkout-service/internal/patterns"
)

// ErrNoGatewayOrderID marks an order-creation reply without a gateway order
// id, the single defined failure signal of that collaborator.
var ErrNoGatewayOrderID = errors.New("order service returned no gateway order id")

// OrderServiceClient calls the order-creation collaborator over HTTP with a
// bounded timeout, a circuit breaker, and a size-1 bulkhead so an attempt
// never has two outbound requests in flight.
type OrderServiceClient struct {
	http     *resty.Client
	breaker  *patterns.Breaker
	bulkhead *patterns.Bulkhead
}

// NewOrderServiceClient builds the client for the given base URL.
func NewOrderServiceClient(baseURL string, timeout time.Duration) *OrderServiceClient {
	return &OrderServiceClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0), // failed attempts are retried manually from Idle, never here
		breaker:  patterns.NewBreaker("OrderCreation", "checkout-service"),
		bulkhead: patterns.NewBulkhead(1, "order-creation", "checkout-service"),
	}
}

// CreateOrder posts the attempt snapshot and returns the gateway order id
// and amount echo.
func (c *OrderServiceClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	var out *models.CreateOrderResponse

	err := c.bulkhead.Execute(func() error {
		_, cbErr := c.breaker.Execute(func() (interface{}, error) {
			resp, httpErr := c.http.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetBody(req).
				Post("/api/create-order")

			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}

			if resp.StatusCode() != http.StatusOK {
				return nil, fmt.Errorf("order service returned status %d: %s", resp.StatusCode(), resp.String())
			}

			var body models.CreateOrderResponse
			if err := json.Unmarshal(resp.Body(), &body); err != nil {
				return nil, fmt.Errorf("failed to parse response: %w", err)
			}

			if body.GatewayOrderID == "" {
				return nil, ErrNoGatewayOrderID
			}

			out = &body
			return body, nil
		})

		return patterns.FormatError("OrderCreation", cbErr)
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Breaker exposes the client's circuit breaker for the status endpoint.
func (c *OrderServiceClient) Breaker() *patterns.Breaker {
	return c.breaker
}
