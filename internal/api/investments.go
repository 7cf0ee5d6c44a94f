package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client

	"yieldly/internal/lifecycle"
	"yieldly/internal/middleware"
	"yieldly/internal/store"
)

// StartInvestmentRequest names the approved deposit to invest
type StartInvestmentRequest struct {
	DepositID string `json:"depositId" binding:"required"`
}

// MyInvestmentsHandler lists the caller's investments, newest first
func MyInvestmentsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		invs, err := s.InvestmentsByUser(middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"investments": invs})
	}
}

// AvailableDepositsHandler lists approved deposits not yet invested.
// Only meaningful under the manual policy; empty under auto invest.
func AvailableDepositsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		deposits, err := s.ApprovedDepositsWithoutInvestment(middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deposits": deposits})
	}
}

// StartInvestmentHandler opens an investment on one of the caller's
// approved deposits at their current yield rate
func StartInvestmentHandler(mgr *lifecycle.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		var req StartInvestmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		inv, err := mgr.StartInvestment(userID, req.DepositID)
		if err != nil {
			fail(c, err)
			return
		}
		invalidateUser(rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"investment": inv})
	}
}
