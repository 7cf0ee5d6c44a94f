package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"yieldly/internal/middleware"
	"yieldly/internal/referral"
	"yieldly/internal/store"
)

// ReferralSummaryHandler returns the caller's referral program state: code,
// counts, current yield rate and progress toward the milestone bonus.
func ReferralSummaryHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
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
		commissions, err := s.CommissionsByReferrer(userID)
		if err != nil {
			fail(c, err)
			return
		}

		referred, err := s.Referrals(userID)
		if err != nil {
			fail(c, err)
			return
		}
		details := make([]gin.H, 0, len(referred))
		for i := range referred {
			deposited, err := s.TotalApprovedDeposits(referred[i].ID)
			if err != nil {
				fail(c, err)
				return
			}
			qualified, err := s.HasQualifiedReferralFor(userID, referred[i].ID)
			if err != nil {
				fail(c, err)
				return
			}
			details = append(details, gin.H{
				"fullName":       referred[i].FullName,
				"joinedAt":       referred[i].CreatedAt,
				"totalDeposited": deposited,
				"qualified":      qualified,
			})
		}

		remaining := referral.MilestoneCount - user.QualifiedReferrals
		if remaining < 0 {
			remaining = 0
		}
		c.JSON(http.StatusOK, gin.H{
			"referralCode":           user.ReferralCode,
			"totalReferrals":         total,
			"qualifiedReferrals":     user.QualifiedReferrals,
			"totalYieldPercent":      user.TotalYieldPercent,
			"qualificationThreshold": referral.QualificationThreshold,
			"milestoneTarget":        referral.MilestoneCount,
			"milestoneRemaining":     remaining,
			"milestoneBonusPaid":     user.ReferralBonusPaid,
			"referrals":              details,
			"commissions":            commissions,
		})
	}
}
