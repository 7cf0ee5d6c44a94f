package api

import (
	"net/http" // HTTP status codes
	"strings"

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"yieldly/internal/domain"
	"yieldly/internal/middleware"
	"yieldly/internal/store"
)

// DepositRequest represents a deposit claim awaiting admin review
type DepositRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Txid          string          `json:"txid" binding:"required"`
	ScreenshotURL string          `json:"screenshotUrl" binding:"required"`
}

// SubmitDepositHandler records a pending deposit claim. Nothing is
// credited here; funds only enter the ledger when an admin approves.
func SubmitDepositHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		var req DepositRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Amount, txid and screenshot are required"})
			return
		}
		if req.Amount.LessThan(MinDeposit) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Minimum deposit is $" + MinDeposit.StringFixed(0)})
			return
		}
		if strings.TrimSpace(req.Txid) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Transaction hash is required"})
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

		deposit := domain.Deposit{
			UserID:        userID,
			Amount:        req.Amount,
			Txid:          strings.TrimSpace(req.Txid),
			ScreenshotURL: req.ScreenshotURL,
			Status:        domain.DepositPending,
		}
		if err := s.CreateDeposit(&deposit); err != nil {
			fail(c, err)
			return
		}
		if err := s.CreateAuditLog(domain.AuditDepositSubmitted,
			"Deposit $"+req.Amount.StringFixed(2)+" submitted by "+user.Email, &userID); err != nil {
			logrus.WithError(err).Error("Failed to write audit log")
		}

		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"deposit_id": deposit.ID,
			"amount":     req.Amount.StringFixed(6),
			"txid":       deposit.Txid,
		}).Info("Deposit submitted")
		c.JSON(http.StatusCreated, gin.H{"deposit": deposit})
	}
}

// MyDepositsHandler lists the caller's deposits, newest first
func MyDepositsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		deposits, err := s.DepositsByUser(middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deposits": deposits})
	}
}
