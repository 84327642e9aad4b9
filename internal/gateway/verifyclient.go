package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/prakashtraders/checkout-service/internal/models"
	"github.com/prakashtraders/checkout-service/internal/patterns"
)

// VerifyServiceClient calls the payment-verification collaborator. The
// signed widget payload is forwarded verbatim; a non-PAID status is a valid
// reply, not a transport error, and is left to the controller to interpret.
type VerifyServiceClient struct {
	http     *resty.Client
	breaker  *patterns.Breaker
	bulkhead *patterns.Bulkhead
}

// NewVerifyServiceClient builds the client for the given base URL.
func NewVerifyServiceClient(baseURL string, timeout time.Duration) *VerifyServiceClient {
	return &VerifyServiceClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0),
		breaker:  patterns.NewBreaker("PaymentVerification", "checkout-service"),
		bulkhead: patterns.NewBulkhead(1, "payment-verification", "checkout-service"),
	}
}

// VerifyPayment forwards the signed payload and returns the verification
// verdict.
func (c *VerifyServiceClient) VerifyPayment(ctx context.Context, payload models.GatewayCallback) (*models.VerifyPaymentResponse, error) {
	var out *models.VerifyPaymentResponse

	err := c.bulkhead.Execute(func() error {
		_, cbErr := c.breaker.Execute(func() (interface{}, error) {
			resp, httpErr := c.http.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetBody(payload).
				Post("/api/verify-payment")

			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}

			if resp.StatusCode() != http.StatusOK {
				return nil, fmt.Errorf("verification service returned status %d: %s", resp.StatusCode(), resp.String())
			}

			var body models.VerifyPaymentResponse
			if err := json.Unmarshal(resp.Body(), &body); err != nil {
				return nil, fmt.Errorf("failed to parse response: %w", err)
			}

			out = &body
			return body, nil
		})

		return patterns.FormatError("PaymentVerification", cbErr)
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Breaker exposes the client's circuit breaker for the status endpoint.
func (c *VerifyServiceClient) Breaker() *patterns.Breaker {
	return c.breaker
}
