package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"investment-platform/internal/services"
)

type AdminHandler struct {
	rdb               *redis.Client
	ledger            *services.LedgerService
	userService       *services.UserService
	withdrawalService *services.WithdrawalService
}

func NewAdminHandler(rdb *redis.Client, ledger *services.LedgerService, userService *services.UserService, withdrawalService *services.WithdrawalService) *AdminHandler {
	return &AdminHandler{
		rdb:               rdb,
		ledger:            ledger,
		userService:       userService,
		withdrawalService: withdrawalService,
	}
}

// GetPendingWithdrawals lists withdrawal requests awaiting resolution.
func (h *AdminHandler) GetPendingWithdrawals(c *gin.Context) {
	entries, err := h.withdrawalService.PendingWithdrawals()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

type resolveRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ResolveWithdrawal approves or rejects a pending withdrawal. This is the
// only path that moves a withdrawal out of pending.
func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	reference := c.Param("reference")

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.ledger.FindByReference(h.ledger.DB(), reference)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown reference"})
		return
	}

	if err := h.withdrawalService.Resolve(reference, *req.Approve); err != nil {
		switch err {
		case services.ErrNotPending:
			c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal already resolved"})
		case services.ErrTransactionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown reference"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Resolution failed"})
		}
		return
	}

	invalidateBalanceCache(h.rdb, entry.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyUser marks an account verified, triggering the welcome bonus.
func (h *AdminHandler) VerifyUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	if err := h.userService.Verify(uint(userID)); err != nil {
		switch err {
		case services.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case services.ErrAlreadyVerified:
			c.JSON(http.StatusConflict, gin.H{"error": "User already verified"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	invalidateBalanceCache(h.rdb, uint(userID))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Reconcile reports whether a user's balance matches their journal.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	report, err := h.ledger.Reconcile(uint(userID))
	if err != nil {
		if err == services.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}
