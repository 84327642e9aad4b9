package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prakashtraders/checkout-service/internal/address"
	"github.com/prakashtraders/checkout-service/internal/cart"
	"github.com/prakashtraders/checkout-service/internal/models"
	"github.com/prakashtraders/checkout-service/internal/money"
	"github.com/prakashtraders/checkout-service/internal/outcome"
)

func testItems() []cart.LineItem {
	return []cart.LineItem{
		{ID: "1", Name: "Steel Kadai", UnitPrice: money.MustFromRupees("500"), Quantity: 2},
	}
}

func newTestController(orders *MockOrderCreator, verifier *MockVerifier, widget *MockWidget) *Controller {
	return NewController(orders, verifier, widget, Config{
		GatewayKeyID: "test_key",
		GatewayWait:  time.Minute,
	})
}

// submitValidSession walks a fresh session to AwaitingGatewayResult; the
// widget options of the open are captured in widget.Opened.
func submitValidSession(t *testing.T, c *Controller, widget *MockWidget) *View {
	t.Helper()

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)

	fillAddress(t, c, view.SessionID)

	view, err = c.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingGateway, view.State)
	require.Len(t, widget.Opened, 1)
	return view
}

func fillAddress(t *testing.T, c *Controller, sessionID string) {
	t.Helper()
	_, err := c.SetAddressField(sessionID, address.FieldName, "Ravi Kumar")
	require.NoError(t, err)
	_, err = c.SetAddressField(sessionID, address.FieldPincode, "400001")
	require.NoError(t, err)
	_, err = c.SetAddressField(sessionID, address.FieldFullAddress, "12 MG Road, Mumbai")
	require.NoError(t, err)
}

func TestCreateSession_EmptyCartRefused(t *testing.T) {
	c := newTestController(&MockOrderCreator{}, &MockVerifier{}, &MockWidget{})

	_, err := c.CreateSession(nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateSession_StartsIdle(t *testing.T) {
	c := newTestController(&MockOrderCreator{}, &MockVerifier{}, &MockWidget{})

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)

	assert.Equal(t, StateIdle, view.State)
	assert.Equal(t, "1000", view.Totals.Subtotal.String())
	assert.Equal(t, "1000", view.Totals.Payable.String())
	assert.False(t, view.AddressValid)
}

func TestSubmit_InvalidAddressStaysIdle(t *testing.T) {
	// Every incomplete combination of the three fields must be rejected.
	combos := []struct {
		name, pincode, full string
	}{
		{"", "", ""},
		{"Ravi", "", ""},
		{"", "400001", ""},
		{"", "", "12 MG Road"},
		{"Ravi", "400001", ""},
		{"Ravi", "", "12 MG Road"},
		{"", "400001", "12 MG Road"},
		{"   ", "400001", "12 MG Road"},
	}

	for _, combo := range combos {
		orders := &MockOrderCreator{}
		c := newTestController(orders, &MockVerifier{}, &MockWidget{})

		view, err := c.CreateSession(testItems())
		require.NoError(t, err)
		id := view.SessionID

		if combo.name != "" {
			_, err = c.SetAddressField(id, address.FieldName, combo.name)
			require.NoError(t, err)
		}
		if combo.pincode != "" {
			_, err = c.SetAddressField(id, address.FieldPincode, combo.pincode)
			require.NoError(t, err)
		}
		if combo.full != "" {
			_, err = c.SetAddressField(id, address.FieldFullAddress, combo.full)
			require.NoError(t, err)
		}

		_, err = c.Submit(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidAddress)

		view, err = c.SessionView(id)
		require.NoError(t, err)
		assert.Equal(t, StateIdle, view.State, "state must not change on validation failure")
		assert.Zero(t, orders.Calls, "no order request before a valid address")
	}
}

func TestSubmit_OrderCreationWithoutIDFails(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: ""}}
	widget := &MockWidget{}
	c := newTestController(orders, &MockVerifier{}, widget)

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)
	fillAddress(t, c, view.SessionID)

	view, err = c.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, view.State)
	assert.Equal(t, ReasonOrderCreationFailed, view.FailureReason)
	require.NotNil(t, view.Outcome)
	assert.Equal(t, outcome.RoutePaymentFailed, view.Outcome.Route)
	assert.Equal(t, ReasonOrderCreationFailed, view.Outcome.Reason)
	assert.Empty(t, widget.Opened, "widget must not open without a gateway order")
}

func TestSubmit_OrderCreationRequestError(t *testing.T) {
	orders := &MockOrderCreator{Err: context.DeadlineExceeded}
	c := newTestController(orders, &MockVerifier{}, &MockWidget{})

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)
	fillAddress(t, c, view.SessionID)

	view, err = c.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, view.State)
	assert.Equal(t, ReasonOrderCreationFailed, view.FailureReason)
}

func TestSubmit_SendsSnapshotNotPrices(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1", AmountPaise: 100000}}
	widget := &MockWidget{}
	c := newTestController(orders, &MockVerifier{}, widget)

	submitValidSession(t, c, widget)

	require.NotNil(t, orders.LastReq)
	assert.Equal(t, "1000", orders.LastReq.Amount.String())
	assert.Equal(t, "Ravi Kumar", orders.LastReq.Name)
	assert.Equal(t, "400001", orders.LastReq.Pincode)
	assert.Equal(t, "12 MG Road, Mumbai", orders.LastReq.Address)
	require.Len(t, orders.LastReq.Items, 1)
	assert.Equal(t, cart.SnapshotItem{ID: "1", Qty: 2}, orders.LastReq.Items[0])

	opts := widget.last()
	assert.Equal(t, "gw_1", opts.OrderID)
	assert.Equal(t, int64(100000), opts.AmountPaise)
	assert.Equal(t, "INR", opts.Currency)
	assert.Equal(t, "test_key", opts.Key)
}

func TestGatewayDismiss_CancelsAndResets(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
	verifier := &MockVerifier{}
	widget := &MockWidget{}
	c := newTestController(orders, verifier, widget)

	view := submitValidSession(t, c, widget)
	widget.last().OnDismiss()

	got, err := c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, got.State)
	assert.Equal(t, ReasonGatewayCancelled, got.FailureReason)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, outcome.RouteCheckout, got.Outcome.Route)
	assert.Zero(t, verifier.Calls)

	// Cancelled sessions can be reset for a fresh manual attempt.
	got, err = c.Reset(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
	assert.Empty(t, got.DisplayRef, "attempt is destroyed on reset")
	assert.Nil(t, got.Outcome)
}

func TestGatewayComplete_PaidRoutesAuthoritativeID(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
	verifier := &MockVerifier{Resp: &models.VerifyPaymentResponse{Status: models.VerifyStatusPaid, OrderID: "ORD_9"}}
	widget := &MockWidget{}
	c := newTestController(orders, verifier, widget)

	view := submitValidSession(t, c, widget)

	payload := models.GatewayCallback{
		GatewayOrderID:   "gw_1",
		GatewayPaymentID: "pay_42",
		GatewaySignature: "sig",
	}
	widget.last().OnComplete(payload)

	got, err := c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatePaid, got.State)

	// The payload reaches the verifier verbatim.
	require.NotNil(t, verifier.LastPayload)
	assert.Equal(t, payload, *verifier.LastPayload)

	// The outcome carries the verifier's order id, never the cosmetic ref.
	require.NotNil(t, got.Outcome)
	assert.Equal(t, outcome.RouteSuccess, got.Outcome.Route)
	assert.Equal(t, "ORD_9", got.Outcome.OrderID)
	assert.NotEqual(t, got.DisplayRef, got.Outcome.OrderID)

	// Paid is final.
	_, err = c.Reset(view.SessionID)
	assert.ErrorIs(t, err, ErrNotResettable)
}

func TestGatewayComplete_VerificationRejected(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
	verifier := &MockVerifier{Resp: &models.VerifyPaymentResponse{Status: "FAILED"}}
	widget := &MockWidget{}
	c := newTestController(orders, verifier, widget)

	view := submitValidSession(t, c, widget)
	widget.last().OnComplete(models.GatewayCallback{GatewayOrderID: "gw_1"})

	got, err := c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, got.State)
	assert.Equal(t, ReasonVerificationFailed, got.FailureReason)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, outcome.RoutePaymentFailed, got.Outcome.Route)
}

func TestGatewayComplete_VerifierError(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
	verifier := &MockVerifier{Err: context.DeadlineExceeded}
	widget := &MockWidget{}
	c := newTestController(orders, verifier, widget)

	view := submitValidSession(t, c, widget)
	widget.last().OnComplete(models.GatewayCallback{GatewayOrderID: "gw_1"})

	got, err := c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, got.State)
	assert.Equal(t, ReasonVerificationFailed, got.FailureReason)
}

func TestGatewayEvents_FirstWins(t *testing.T) {
	t.Run("complete then dismiss", func(t *testing.T) {
		orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
		verifier := &MockVerifier{Resp: &models.VerifyPaymentResponse{Status: models.VerifyStatusPaid, OrderID: "ORD_9"}}
		widget := &MockWidget{}
		c := newTestController(orders, verifier, widget)

		view := submitValidSession(t, c, widget)
		opts := widget.last()

		opts.OnComplete(models.GatewayCallback{GatewayOrderID: "gw_1"})
		opts.OnDismiss()

		got, err := c.SessionView(view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, StatePaid, got.State, "late dismiss must be discarded")
	})

	t.Run("dismiss then complete", func(t *testing.T) {
		orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
		verifier := &MockVerifier{Resp: &models.VerifyPaymentResponse{Status: models.VerifyStatusPaid, OrderID: "ORD_9"}}
		widget := &MockWidget{}
		c := newTestController(orders, verifier, widget)

		view := submitValidSession(t, c, widget)
		opts := widget.last()

		opts.OnDismiss()
		opts.OnComplete(models.GatewayCallback{GatewayOrderID: "gw_1"})

		got, err := c.SessionView(view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, StateCancelled, got.State, "late completion must be discarded")
		assert.Zero(t, verifier.Calls, "discarded completion must not be verified")
	})
}

func TestGatewayTimeout(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
	widget := &MockWidget{}
	c := NewController(orders, &MockVerifier{}, widget, Config{
		GatewayKeyID: "test_key",
		GatewayWait:  20 * time.Millisecond,
	})

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)
	fillAddress(t, c, view.SessionID)
	view, err = c.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingGateway, view.State)

	require.Eventually(t, func() bool {
		got, err := c.SessionView(view.SessionID)
		return err == nil && got.State == StateFailed
	}, time.Second, 5*time.Millisecond)

	got, err := c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, ReasonTimeout, got.FailureReason)

	// The timed-out attempt's widget registration is withdrawn so a late
	// callback cannot reach it.
	assert.Equal(t, []string{"gw_1"}, widget.Expired)
}

func TestStaleWatchdog_IgnoredAfterResetAndResubmit(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
	verifier := &MockVerifier{Resp: &models.VerifyPaymentResponse{Status: models.VerifyStatusPaid, OrderID: "ORD_9"}}
	widget := &MockWidget{}
	c := newTestController(orders, verifier, widget)

	view := submitValidSession(t, c, widget)
	widget.last().OnDismiss()

	_, err := c.Reset(view.SessionID)
	require.NoError(t, err)

	orders.Resp = &models.CreateOrderResponse{GatewayOrderID: "gw_2"}
	got, err := c.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingGateway, got.State)

	// The first attempt's watchdog firing late must not touch the second
	// attempt.
	c.gatewayTimeout(view.SessionID, 1)

	got, err = c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingGateway, got.State)
	assert.Empty(t, widget.Expired)

	// The live attempt still settles normally.
	widget.last().OnComplete(models.GatewayCallback{GatewayOrderID: "gw_2"})
	got, err = c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatePaid, got.State)
}

func TestEdits_RejectedWhileAttemptInFlight(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: "gw_1"}}
	widget := &MockWidget{}
	c := newTestController(orders, &MockVerifier{}, widget)

	view := submitValidSession(t, c, widget)

	_, err := c.AdjustQuantity(view.SessionID, "1", 1)
	assert.ErrorIs(t, err, ErrAttemptInFlight)

	_, err = c.SetAddressField(view.SessionID, address.FieldName, "Someone Else")
	assert.ErrorIs(t, err, ErrAttemptInFlight)

	_, err = c.Submit(context.Background(), view.SessionID)
	assert.ErrorIs(t, err, ErrAttemptInFlight)

	// The in-flight snapshot is untouched.
	got, err := c.SessionView(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "1000", got.Totals.Payable.String())
}

func TestAdjustQuantity_InIdle(t *testing.T) {
	c := newTestController(&MockOrderCreator{}, &MockVerifier{}, &MockWidget{})

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)

	view, err = c.AdjustQuantity(view.SessionID, "1", 1)
	require.NoError(t, err)
	assert.Equal(t, "1500", view.Totals.Subtotal.String())

	view, err = c.AdjustQuantity(view.SessionID, "1", -100)
	require.NoError(t, err)
	assert.Equal(t, "500", view.Totals.Subtotal.String(), "quantity floors at 1")
}

func TestReset_OnlyFromFailedOrCancelled(t *testing.T) {
	c := newTestController(&MockOrderCreator{}, &MockVerifier{}, &MockWidget{})

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)

	_, err = c.Reset(view.SessionID)
	assert.ErrorIs(t, err, ErrNotResettable)
}

func TestUnknownSession(t *testing.T) {
	c := newTestController(&MockOrderCreator{}, &MockVerifier{}, &MockWidget{})

	_, err := c.SessionView("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = c.Submit(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = c.AdjustQuantity("missing", "1", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRetryAfterFailure(t *testing.T) {
	orders := &MockOrderCreator{Resp: &models.CreateOrderResponse{GatewayOrderID: ""}}
	widget := &MockWidget{}
	c := newTestController(orders, &MockVerifier{}, widget)

	view, err := c.CreateSession(testItems())
	require.NoError(t, err)
	fillAddress(t, c, view.SessionID)

	view, err = c.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)
	require.Equal(t, StateFailed, view.State)
	assert.Equal(t, 1, orders.Calls, "no automatic retry")

	_, err = c.Reset(view.SessionID)
	require.NoError(t, err)

	// A manual resubmit after the collaborator recovers succeeds.
	orders.Resp = &models.CreateOrderResponse{GatewayOrderID: "gw_2"}
	view, err = c.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingGateway, view.State)
	assert.Equal(t, 2, orders.Calls)
}
