package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"investment-platform/internal/auth"
	"investment-platform/internal/services"
	"investment-platform/internal/utils"
)

type WalletHandler struct {
	rdb            *redis.Client
	userService    *services.UserService
	paymentService *services.PaymentService
}

func NewWalletHandler(rdb *redis.Client, userService *services.UserService, paymentService *services.PaymentService) *WalletHandler {
	return &WalletHandler{
		rdb:            rdb,
		userService:    userService,
		paymentService: paymentService,
	}
}

// GetBalance returns the user's current balance, cached for 60 seconds.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := context.Background()
	cacheKey := balanceCacheKey(userID)

	var cached string
	if h.rdb != nil {
		if found, err := utils.GetCache(ctx, h.rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"balance": cached, "cached": true})
			return
		}
	}

	user, err := h.userService.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if h.rdb != nil {
		_ = utils.SetCache(ctx, h.rdb, cacheKey, user.Balance.String(), 60*time.Second)
	}
	c.JSON(http.StatusOK, gin.H{"balance": user.Balance.String(), "cached": false})
}

// GetTransactions returns the user's paginated journal history.
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, total, err := h.paymentService.GetTransactions(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"page":         page,
		"page_size":    pageSize,
		"total":        total,
	})
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// InitiateDeposit journals a pending deposit and hands back the reference the
// payment gateway will confirm.
func (h *WalletHandler) InitiateDeposit(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	entry, err := h.paymentService.InitiateDeposit(userID, req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate deposit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": entry})
}

func balanceCacheKey(userID uint) string {
	return "balance:user:" + strconv.Itoa(int(userID))
}

// invalidateBalanceCache drops the cached balance after any mutation.
func invalidateBalanceCache(rdb *redis.Client, userID uint) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCache(context.Background(), rdb, balanceCacheKey(userID))
}
