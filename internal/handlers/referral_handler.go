package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"investment-platform/internal/auth"
	"investment-platform/internal/services"
)

type ReferralHandler struct {
	userService   *services.UserService
	uplineService *services.UplineService
}

func NewReferralHandler(userService *services.UserService, uplineService *services.UplineService) *ReferralHandler {
	return &ReferralHandler{userService: userService, uplineService: uplineService}
}

// GetReferrals lists the users the caller has directly sponsored.
func (h *ReferralHandler) GetReferrals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	referrals, err := h.userService.GetReferrals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch referrals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": referrals})
}

// GetUpline returns the caller's sponsor chain, nearest first.
func (h *ReferralHandler) GetUpline(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	chain, err := h.uplineService.ResolveChain(userID, services.MaxUplineDepth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve upline"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": chain})
}
