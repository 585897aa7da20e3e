package handlers

import (
	"io"
	"net/http"

	"taskhive/models"
	"taskhive/services/payment"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody bounds gateway push payloads.
const maxWebhookBody = 64 << 10

// PaymentHandler serves the payment bridge.
type PaymentHandler struct {
	Svc payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	resp, err := h.Svc.CreateIntent(c.Request.Context(), actor, c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) PaymentSuccessHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if _, err := h.Svc.ConfirmSuccess(c.Request.Context(), actor, c.Param("bookingId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment processed successfully"})
}

func (h *PaymentHandler) PaymentFailedHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if _, err := h.Svc.ConfirmFailure(c.Request.Context(), actor, c.Param("bookingId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment failed"})
}

func (h *PaymentHandler) PaymentHistoryHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	history, err := h.Svc.History(c.Request.Context(), actor, c.Query("userId"), models.Role(c.Query("role")))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// WebhookHandler receives signed gateway pushes. The raw body is needed for
// signature verification, so it is read before any binding.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, utils.Validation("unreadable webhook body", nil))
		return
	}
	if err := h.Svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		getLogger(c).Warn("webhook rejected", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) TestConnectionHandler(c *gin.Context) {
	bal, err := h.Svc.TestConnection(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment gateway connection successful", "balance": bal})
}
