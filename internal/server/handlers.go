package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prakashtraders/checkout-service/internal/checkout"
	"github.com/prakashtraders/checkout-service/internal/gateway"
	"github.com/prakashtraders/checkout-service/internal/models"
	"github.com/prakashtraders/checkout-service/internal/outcome"
	"github.com/prakashtraders/checkout-service/internal/patterns"
)

// Handler carries the checkout controller and the widget callback sink for
// the HTTP surface.
type Handler struct {
	ctrl     *checkout.Controller
	widget   *gateway.HostedWidget
	breakers []*patterns.Breaker
}

// NewHandler wires the HTTP surface. breakers feed the circuit-status
// endpoint and may be empty in tests.
func NewHandler(ctrl *checkout.Controller, widget *gateway.HostedWidget, breakers ...*patterns.Breaker) *Handler {
	return &Handler{ctrl: ctrl, widget: widget, breakers: breakers}
}

// CreateSession opens a checkout session from the cart handed over by the
// shop front. An empty cart is refused with the cart recovery destination.
func (h *Handler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	view, err := h.ctrl.CreateSession(req.Items)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			d := outcome.ForEmptyCart()
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: err.Error(), Outcome: &d})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(view))
}

// GetSession returns the live session snapshot: state, totals, address
// validity, and the outcome once the attempt is terminal.
func (h *Handler) GetSession(c *gin.Context) {
	view, err := h.ctrl.SessionView(c.Param("sessionId"))
	if err != nil {
		writeControllerError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(view))
}

// AdjustQuantity applies a quantity delta to one line item.
func (h *Handler) AdjustQuantity(c *gin.Context) {
	var req models.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	view, err := h.ctrl.AdjustQuantity(c.Param("sessionId"), c.Param("itemId"), req.Delta)
	if err != nil {
		writeControllerError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(view))
}

// SetAddressField replaces one shipping address field.
func (h *Handler) SetAddressField(c *gin.Context) {
	var req models.SetAddressFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	view, err := h.ctrl.SetAddressField(c.Param("sessionId"), req.Field, req.Value)
	if err != nil {
		writeControllerError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(view))
}

// Pay starts a payment attempt. The response shows the state reached after
// order creation: awaiting the gateway on success, or terminal Failed with
// its outcome when the order service refused.
func (h *Handler) Pay(c *gin.Context) {
	view, err := h.ctrl.Submit(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeControllerError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(view))
}

// Reset returns a failed or cancelled session to Idle for a manual retry.
func (h *Handler) Reset(c *gin.Context) {
	view, err := h.ctrl.Reset(c.Param("sessionId"))
	if err != nil {
		writeControllerError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(view))
}

// GatewayComplete receives the widget's signed completion payload and feeds
// it to the parked attempt. Verification runs synchronously, so the session
// is terminal by the time this returns.
func (h *Handler) GatewayComplete(c *gin.Context) {
	var payload models.GatewayCallback
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	if err := h.widget.Complete(payload); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// GatewayDismiss reports that the buyer closed the widget without paying.
func (h *Handler) GatewayDismiss(c *gin.Context) {
	var req models.DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	if err := h.widget.Dismiss(req.GatewayOrderID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// CircuitStatus returns the state of the collaborator circuit breakers.
func (h *Handler) CircuitStatus(c *gin.Context) {
	statuses := make([]patterns.BreakerStatus, 0, len(h.breakers))
	for _, b := range h.breakers {
		statuses = append(statuses, b.Status())
	}
	c.JSON(http.StatusOK, gin.H{"circuits": statuses})
}

func writeControllerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, checkout.ErrInvalidAddress):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, checkout.ErrAttemptInFlight), errors.Is(err, checkout.ErrNotResettable):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	}
}

func toSessionResponse(v *checkout.View) models.SessionResponse {
	return models.SessionResponse{
		SessionID:     v.SessionID,
		State:         v.State.String(),
		DisplayRef:    v.DisplayRef,
		Totals:        v.Totals,
		Address:       v.Address,
		AddressValid:  v.AddressValid,
		FailureReason: v.FailureReason,
		Outcome:       v.Outcome,
	}
}
