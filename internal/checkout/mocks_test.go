package checkout

import (
	"context"

	"github.com/prakashtraders/checkout-service/internal/models"
)

// MockOrderCreator implements OrderCreator for testing
type MockOrderCreator struct {
	Resp    *models.CreateOrderResponse
	Err     error
	LastReq *models.CreateOrderRequest
	Calls   int
}

func (m *MockOrderCreator) CreateOrder(_ context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	m.Calls++
	m.LastReq = &req
	return m.Resp, m.Err
}

// MockVerifier implements PaymentVerifier for testing
type MockVerifier struct {
	Resp        *models.VerifyPaymentResponse
	Err         error
	LastPayload *models.GatewayCallback
	Calls       int
}

func (m *MockVerifier) VerifyPayment(_ context.Context, payload models.GatewayCallback) (*models.VerifyPaymentResponse, error) {
	m.Calls++
	m.LastPayload = &payload
	return m.Resp, m.Err
}

// MockWidget implements Widget for testing, capturing every Open so tests
// can fire the callbacks themselves.
type MockWidget struct {
	Opened  []WidgetOptions
	Expired []string
	Err     error
}

func (m *MockWidget) Open(opts WidgetOptions) error {
	if m.Err != nil {
		return m.Err
	}
	m.Opened = append(m.Opened, opts)
	return nil
}

func (m *MockWidget) Expire(gatewayOrderID string) {
	m.Expired = append(m.Expired, gatewayOrderID)
}

func (m *MockWidget) last() WidgetOptions {
	return m.Opened[len(m.Opened)-1]
}
