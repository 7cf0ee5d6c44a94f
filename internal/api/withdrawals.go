package api

import (
	"net/http" // HTTP status codes
	"strings"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"yieldly/internal/lifecycle"
	"yieldly/internal/middleware"
	"yieldly/internal/store"
)

// WithdrawalRequest represents a withdrawal request
type WithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	USDTAddress string          `json:"usdtAddress" binding:"required"`
}

// SubmitWithdrawalHandler debits the balance and queues the withdrawal for
// admin review. The debit happens up front so pending withdrawals can never
// overspend the balance.
func SubmitWithdrawalHandler(s *store.Store, mgr *lifecycle.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		var req WithdrawalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Amount and USDT address are required"})
			return
		}
		if req.Amount.LessThan(MinWithdrawal) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Minimum withdrawal is $" + MinWithdrawal.StringFixed(0)})
			return
		}
		address := strings.TrimSpace(req.USDTAddress)
		if len(address) < MinAddressLen {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid USDT address"})
			return
		}

		user, err := s.GetUser(userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if user.IsBlocked {
			c.JSON(http.StatusForbidden, gin.H{"message": "Account is blocked"})
			return
		}

		w, err := mgr.SubmitWithdrawal(userID, req.Amount, address)
		if err != nil {
			fail(c, err)
			return
		}
		invalidateUser(rdb, userID)

		logrus.WithFields(logrus.Fields{
			"user_id":       userID,
			"withdrawal_id": w.ID,
			"amount":        req.Amount.StringFixed(6),
		}).Info("Withdrawal submitted")
		c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
	}
}

// MyWithdrawalsHandler lists the caller's withdrawals, newest first
func MyWithdrawalsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := s.WithdrawalsByUser(middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawals": ws})
	}
}
