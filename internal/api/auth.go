package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strings"
	"time" // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing

	"yieldly/internal/config"
	"yieldly/internal/domain"
	"yieldly/internal/middleware"
	"yieldly/internal/store"
	"yieldly/internal/utils"
)

// RegisterRequest represents a signup request
type RegisterRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referralCode"` // optional code of the referrer
	DeviceID     string `json:"deviceId"`     // optional device fingerprint
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a new user account. The referral relationship is
// fixed at signup: an invalid code rejects the signup rather than silently
// creating an unreferred account, and a device that already owns an
// account cannot open a second one.
func RegisterHandler(s *store.Store, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		if _, err := s.GetUserByEmail(email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
			return
		}
		if req.DeviceID != "" {
			if _, err := s.GetUserByDeviceID(req.DeviceID); err == nil {
				c.JSON(http.StatusConflict, gin.H{"message": "An account already exists on this device"})
				return
			}
		}

		var referredBy *string
		if req.ReferralCode != "" {
			referrer, err := s.GetUserByReferralCode(strings.ToUpper(strings.TrimSpace(req.ReferralCode)))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid referral code"})
				return
			}
			referredBy = &referrer.ID
		}

		code, err := uniqueReferralCode(s)
		if err != nil {
			fail(c, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			fail(c, err)
			return
		}

		user := domain.User{
			FullName:          strings.TrimSpace(req.FullName),
			Email:             email,
			Password:          string(hash),
			ReferralCode:      code,
			ReferredBy:        referredBy,
			TotalYieldPercent: domain.BaseYieldPercent,
		}
		if req.DeviceID != "" {
			user.DeviceID = &req.DeviceID
		}
		if err := s.CreateUser(&user); err != nil {
			fail(c, err)
			return
		}

		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"email":    user.Email,
			"referred": referredBy != nil,
		}).Info("User registered")

		token, err := utils.GenerateUserJWT(user.ID, cfg.JWTSecret)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
	}
}

// uniqueReferralCode retries generation until the code is free. Collisions
// on a 36^5 space are rare enough that a handful of tries always suffices.
func uniqueReferralCode(s *store.Store) (string, error) {
	for i := 0; i < 10; i++ {
		code := utils.GenerateReferralCode()
		exists, err := s.ReferralCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return utils.GenerateReferralCode(), nil
}

// LoginHandler authenticates a user and issues a JWT
func LoginHandler(s *store.Store, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		user, err := s.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		if user.IsBlocked {
			c.JSON(http.StatusForbidden, gin.H{"message": "Account is blocked"})
			return
		}
		token, err := utils.GenerateUserJWT(user.ID, cfg.JWTSecret)
		if err != nil {
			fail(c, err)
			return
		}
		logrus.WithField("user_id", user.ID).Info("User logged in")
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}

// MeHandler returns the caller's profile with referral counts, cached
// briefly in Redis and invalidated by every balance-changing action.
func MeHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		ctx := context.Background()
		key := userCacheKey(userID)

		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, key, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}

		user, err := s.GetUser(userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		total, err := s.ReferralCount(userID)
		if err != nil {
			fail(c, err)
			return
		}
		resp := gin.H{"user": user, "totalReferrals": total}
		if err := utils.SetCache(ctx, rdb, key, resp, 60*time.Second); err != nil {
			logrus.WithError(err).Warn("Failed to cache user profile")
		}
		c.JSON(http.StatusOK, resp)
	}
}

// WalletInfoHandler returns the platform deposit address and limits
func WalletInfoHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"address":       cfg.PlatformWallet,
			"network":       "TRC20",
			"minDeposit":    MinDeposit,
			"minWithdrawal": MinWithdrawal,
		})
	}
}
