package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"yieldly/internal/apperr"
	"yieldly/internal/utils"
)

// Platform limits, in whole dollars.
var (
	MinDeposit    = decimal.NewFromInt(5)
	MinWithdrawal = decimal.NewFromInt(20)
)

// MinAddressLen is the weakest sanity check a TRC-20 address can pass.
const MinAddressLen = 10

// fail maps an error to its HTTP response. Business errors carry their own
// status and message; everything else is logged and hidden behind a 500.
func fail(c *gin.Context, err error) {
	if e := apperr.From(err); e != nil {
		c.JSON(e.Status, gin.H{"message": e.Message})
		return
	}
	logrus.WithFields(logrus.Fields{
		"path":  c.FullPath(),
		"error": err.Error(),
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// userCacheKey is the profile cache entry invalidated on every mutation
// that touches the user's balance or status.
func userCacheKey(userID string) string {
	return "user:profile:" + userID
}

const statsCacheKey = "admin:stats"

// invalidateUser drops the cached profile after a balance-changing action.
// Cache errors are logged, never surfaced; the cache is best effort.
func invalidateUser(rdb *redis.Client, userID string) {
	if rdb == nil {
		return
	}
	ctx := context.Background()
	if err := utils.DeleteCache(ctx, rdb, userCacheKey(userID)); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate user cache")
	}
	if err := utils.DeleteCache(ctx, rdb, statsCacheKey); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate stats cache")
	}
}
