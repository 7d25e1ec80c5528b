package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"investment-platform/internal/auth"
	"investment-platform/internal/services"
)

type InvestmentHandler struct {
	rdb               *redis.Client
	investmentService *services.InvestmentService
}

func NewInvestmentHandler(rdb *redis.Client, investmentService *services.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{rdb: rdb, investmentService: investmentService}
}

// GetPlans lists the plans currently open for purchase.
func (h *InvestmentHandler) GetPlans(c *gin.Context) {
	plans, err := h.investmentService.GetActivePlans()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": plans})
}

type purchaseRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

// Purchase buys a plan for the authenticated user.
func (h *InvestmentHandler) Purchase(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	investment, err := h.investmentService.Purchase(userID, req.PlanID)
	if err != nil {
		switch err {
		case services.ErrPlanNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		case services.ErrInsufficientFunds:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Purchase failed"})
		}
		return
	}

	invalidateBalanceCache(h.rdb, userID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": investment})
}

// GetMyInvestments lists the authenticated user's investments.
func (h *InvestmentHandler) GetMyInvestments(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	investments, err := h.investmentService.GetUserInvestments(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch investments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": investments})
}
