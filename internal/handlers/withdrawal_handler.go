package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"investment-platform/internal/auth"
	"investment-platform/internal/services"
)

type WithdrawalHandler struct {
	rdb               *redis.Client
	withdrawalService *services.WithdrawalService
}

func NewWithdrawalHandler(rdb *redis.Client, withdrawalService *services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{rdb: rdb, withdrawalService: withdrawalService}
}

type setPinRequest struct {
	Pin string `json:"pin" binding:"required,min=4"`
}

// SetPin stores the withdrawal PIN for the authenticated user.
func (h *WithdrawalHandler) SetPin(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req setPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.withdrawalService.SetPin(userID, req.Pin); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set pin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type withdrawalRequest struct {
	Amount decimal.Decimal      `json:"amount" binding:"required"`
	Pin    string               `json:"pin" binding:"required"`
	Bank   services.BankDetails `json:"bank" binding:"required"`
}

// RequestWithdrawal creates a PIN-gated pending withdrawal, reserving the
// funds immediately.
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.withdrawalService.RequestWithdrawal(userID, req.Amount, req.Pin, req.Bank)
	if err != nil {
		switch err {
		case services.ErrInvalidPin, services.ErrPinNotSet:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case services.ErrInsufficientFunds:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
		case services.ErrInvalidAmount:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Withdrawal request failed"})
		}
		return
	}

	invalidateBalanceCache(h.rdb, userID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": entry})
}
