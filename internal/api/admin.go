package api

import (
	"context"       // Context for Redis operations
	"crypto/subtle" // Constant-time credential comparison
	"net/http"      // HTTP status codes
	"strings"
	"time" // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"yieldly/internal/config"
	"yieldly/internal/domain"
	"yieldly/internal/lifecycle"
	"yieldly/internal/ratelimit"
	"yieldly/internal/store"
	"yieldly/internal/utils"
)

// MinRejectReasonLen keeps admin rejection reasons meaningful; the reason
// goes back to the user verbatim.
const MinRejectReasonLen = 10

// AdminLoginRequest represents an admin login attempt
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SetBalanceRequest replaces a user's balance outright
type SetBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
	Reason  string          `json:"reason" binding:"required"`
}

// AdminLoginHandler checks the fixed admin credentials behind a per-IP
// failure limiter and issues a short-lived admin token.
func AdminLoginHandler(cfg *config.Config, limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		ip := c.ClientIP()

		blocked, err := limiter.Blocked(ctx, ip)
		if err != nil {
			fail(c, err)
			return
		}
		if blocked {
			retry := limiter.Retry(ctx, ip)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message":      "Too many failed attempts, try again later",
				"retryAfterSec": int(retry.Seconds()),
			})
			return
		}

		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.AdminUsername)) == 1
		passOK := cfg.AdminPassword != "" &&
			subtle.ConstantTimeCompare([]byte(req.Password), []byte(cfg.AdminPassword)) == 1
		if !userOK || !passOK {
			if err := limiter.Fail(ctx, ip); err != nil {
				logrus.WithError(err).Warn("Failed to record login failure")
			}
			logrus.WithField("ip", ip).Warn("Failed admin login attempt")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}

		if err := limiter.Reset(ctx, ip); err != nil {
			logrus.WithError(err).Warn("Failed to reset login limiter")
		}
		token, err := utils.GenerateAdminJWT(cfg.JWTSecret)
		if err != nil {
			fail(c, err)
			return
		}
		logrus.WithField("ip", ip).Info("Admin logged in")
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// StatsHandler returns the dashboard aggregates, cached briefly
func StatsHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var cached store.Stats
		if found, err := utils.GetCache(ctx, rdb, statsCacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		stats, err := s.GetStats()
		if err != nil {
			fail(c, err)
			return
		}
		if err := utils.SetCache(ctx, rdb, statsCacheKey, stats, 30*time.Second); err != nil {
			logrus.WithError(err).Warn("Failed to cache stats")
		}
		c.JSON(http.StatusOK, stats)
	}
}

// AdminUsersHandler lists every user with their referral count
func AdminUsersHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.ListUsers()
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]gin.H, 0, len(users))
		for i := range users {
			n, err := s.ReferralCount(users[i].ID)
			if err != nil {
				fail(c, err)
				return
			}
			out = append(out, gin.H{"user": users[i], "totalReferrals": n})
		}
		c.JSON(http.StatusOK, gin.H{"users": out})
	}
}

// AdminDepositsHandler lists every deposit for review
func AdminDepositsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		deposits, err := s.AllDeposits()
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deposits": deposits})
	}
}

// ApproveDepositHandler approves a pending deposit and triggers the
// policy's investment or balance credit plus referral qualification
func ApproveDepositHandler(mgr *lifecycle.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		deposit, err := mgr.ApproveDeposit(c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		invalidateUser(rdb, deposit.UserID)
		c.JSON(http.StatusOK, gin.H{"deposit": deposit})
	}
}

// RejectDepositHandler rejects a pending deposit with a reason
func RejectDepositHandler(mgr *lifecycle.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RejectRequest
		if err := c.ShouldBindJSON(&req); err != nil ||
			len(strings.TrimSpace(req.Reason)) < MinRejectReasonLen {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "A rejection reason of at least 10 characters is required"})
			return
		}
		deposit, err := mgr.RejectDeposit(c.Param("id"), strings.TrimSpace(req.Reason))
		if err != nil {
			fail(c, err)
			return
		}
		invalidateUser(rdb, deposit.UserID)
		c.JSON(http.StatusOK, gin.H{"deposit": deposit})
	}
}

// AdminWithdrawalsHandler lists every withdrawal for review
func AdminWithdrawalsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := s.AllWithdrawals()
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawals": ws})
	}
}

// ProcessWithdrawalHandler marks a pending withdrawal as paid out
func ProcessWithdrawalHandler(mgr *lifecycle.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := mgr.ProcessWithdrawal(c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		invalidateUser(rdb, w.UserID)
		c.JSON(http.StatusOK, gin.H{"withdrawal": w})
	}
}

// RejectWithdrawalHandler rejects a pending withdrawal and refunds the
// debited amount
func RejectWithdrawalHandler(mgr *lifecycle.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := mgr.RejectWithdrawal(c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		invalidateUser(rdb, w.UserID)
		c.JSON(http.StatusOK, gin.H{"withdrawal": w})
	}
}

// SetBalanceHandler replaces a user's balance outright. This is a manual
// override, not a delta; the mandatory reason lands in the audit trail
// with the before and after values.
func SetBalanceHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		var req SetBalanceRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Balance and reason are required"})
			return
		}
		if req.Balance.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Balance cannot be negative"})
			return
		}

		err := s.WithTx(func(tx *store.Store) error {
			user, err := tx.GetUser(userID)
			if err != nil {
				return err
			}
			if err := tx.SetBalance(userID, req.Balance); err != nil {
				return err
			}
			return tx.CreateAuditLog(domain.AuditBalanceAdjusted,
				"Balance changed from $"+user.Balance.StringFixed(2)+" to $"+
					req.Balance.StringFixed(2)+". Reason: "+strings.TrimSpace(req.Reason),
				&userID)
		})
		if err != nil {
			fail(c, err)
			return
		}
		invalidateUser(rdb, userID)

		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"balance": req.Balance.StringFixed(6),
			"reason":  req.Reason,
		}).Warn("Admin balance override")
		c.JSON(http.StatusOK, gin.H{"message": "Balance updated"})
	}
}

// BlockUserHandler blocks or unblocks a user account
func BlockUserHandler(s *store.Store, rdb *redis.Client, blocked bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		if _, err := s.GetUser(userID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err := s.SetBlocked(userID, blocked); err != nil {
			fail(c, err)
			return
		}
		action := domain.AuditUserUnblocked
		msg := "User unblocked"
		if blocked {
			action = domain.AuditUserBlocked
			msg = "User blocked"
		}
		if err := s.CreateAuditLog(action, msg, &userID); err != nil {
			logrus.WithError(err).Error("Failed to write audit log")
		}
		invalidateUser(rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

// AdminInvestmentsHandler lists every investment with the owner's email
func AdminInvestmentsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		invs, err := s.AllInvestments()
		if err != nil {
			fail(c, err)
			return
		}
		emails := map[string]string{}
		out := make([]gin.H, 0, len(invs))
		for i := range invs {
			email, ok := emails[invs[i].UserID]
			if !ok {
				u, err := s.GetUser(invs[i].UserID)
				if err != nil {
					fail(c, err)
					return
				}
				email = u.Email
				emails[invs[i].UserID] = email
			}
			out = append(out, gin.H{"investment": invs[i], "userEmail": email})
		}
		c.JSON(http.StatusOK, gin.H{"investments": out})
	}
}

// AdminCommissionsHandler lists every referral commission record
func AdminCommissionsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cs, err := s.AllCommissions()
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"commissions": cs})
	}
}

// AuditLogsHandler returns the latest audit entries
func AuditLogsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := s.AuditLogs(100)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs})
	}
}
