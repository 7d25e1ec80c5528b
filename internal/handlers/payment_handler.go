package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"investment-platform/internal/services"
)

type PaymentHandler struct {
	rdb            *redis.Client
	ledger         *services.LedgerService
	paymentService *services.PaymentService
}

func NewPaymentHandler(rdb *redis.Client, ledger *services.LedgerService, paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{rdb: rdb, ledger: ledger, paymentService: paymentService}
}

type webhookRequest struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=success failed"`
}

// Webhook receives the payment gateway's confirmation for a deposit
// reference. Replays of an already-resolved reference are rejected, so the
// credit is applied at most once.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.ledger.FindByReference(h.ledger.DB(), req.Reference)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown reference"})
		return
	}

	if err := h.paymentService.ConfirmDeposit(req.Reference, req.Status == "success"); err != nil {
		switch err {
		case services.ErrNotPending:
			c.JSON(http.StatusConflict, gin.H{"error": "Reference already resolved"})
		case services.ErrTransactionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown reference"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Confirmation failed"})
		}
		return
	}

	invalidateBalanceCache(h.rdb, entry.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
