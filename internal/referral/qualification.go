package referral

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"yieldly/internal/domain"
)

// Qualification thresholds and bonus amounts, in whole dollars.
var (
	QualificationThreshold = decimal.NewFromInt(50)
	WelcomeBonus           = decimal.NewFromInt(5)
	MilestoneBonus         = decimal.NewFromInt(30)
)

// MilestoneCount is the qualified-referral count that pays the one-time
// referrer bonus.
const MilestoneCount = 20

// Ledger is the slice of the ledger store the engine needs. All calls are
// expected to run inside the caller's transaction.
type Ledger interface {
	GetUser(id string) (*domain.User, error)
	TotalApprovedDeposits(userID string) (decimal.Decimal, error)
	HasQualifiedReferralFor(referrerID, fromUserID string) (bool, error)
	IncrementQualifiedReferrals(userID string) (*domain.User, error)
	CreateCommission(c *domain.ReferralCommission) error
	AdjustBalance(userID string, delta decimal.Decimal) error
	MarkReferralBonusPaid(userID string) error
	MarkWelcomeBonusPaid(userID string) error
	RaiseYieldPercentTo(userID string, pct int) error
	CreateAuditLog(action, details string, targetUserID *string) error
}

// Apply evaluates the qualification side effects of one just-approved
// deposit. Qualification is a one-time monotonic event per referred user:
// it fires only on the approval that carries the cumulative approved total
// across the threshold, and each sub-step (referrer increment, milestone
// bonus, welcome bonus) is guarded by its own one-shot marker so no reward
// can pay twice.
func Apply(tx Ledger, user *domain.User, depositAmount decimal.Decimal) error {
	if user.ReferredBy == nil {
		return nil
	}
	referrerID := *user.ReferredBy

	totalDeposited, err := tx.TotalApprovedDeposits(user.ID)
	if err != nil {
		return err
	}
	// The total already includes the deposit being approved.
	wasQualifiedBefore := totalDeposited.Sub(depositAmount).GreaterThanOrEqual(QualificationThreshold)
	if totalDeposited.LessThan(QualificationThreshold) || wasQualifiedBefore {
		return nil
	}

	alreadyQualified, err := tx.HasQualifiedReferralFor(referrerID, user.ID)
	if err != nil {
		return err
	}
	if !alreadyQualified {
		referrer, err := tx.IncrementQualifiedReferrals(referrerID)
		if err != nil {
			return err
		}
		// Zero-amount commission row marks the pair as qualified.
		marker := domain.ReferralCommission{
			ReferrerID:   referrerID,
			FromUserID:   user.ID,
			InvestmentID: domain.QualificationMarker,
			Amount:       decimal.Zero,
		}
		if err := tx.CreateCommission(&marker); err != nil {
			return err
		}
		if err := tx.CreateAuditLog(domain.AuditReferralQualified,
			"User "+user.Email+" deposited $"+totalDeposited.StringFixed(2)+
				" total (>=$"+QualificationThreshold.StringFixed(2)+"). Referrer "+referrer.Email+
				" now has "+strconv.Itoa(referrer.QualifiedReferrals)+" qualified referrals, yield "+
				strconv.Itoa(referrer.TotalYieldPercent)+"%",
			&referrerID); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"referrer_id":         referrerID,
			"referred_user_id":    user.ID,
			"qualified_referrals": referrer.QualifiedReferrals,
			"yield_percent":       referrer.TotalYieldPercent,
		}).Info("Referral qualified")

		if referrer.QualifiedReferrals >= MilestoneCount && !referrer.ReferralBonusPaid {
			if err := tx.AdjustBalance(referrerID, MilestoneBonus); err != nil {
				return err
			}
			if err := tx.MarkReferralBonusPaid(referrerID); err != nil {
				return err
			}
			if err := tx.CreateAuditLog(domain.AuditReferralMilestone,
				"Referrer "+referrer.Email+" reached "+strconv.Itoa(MilestoneCount)+
					" qualified referrals, $"+MilestoneBonus.StringFixed(2)+" bonus paid",
				&referrerID); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"referrer_id": referrerID,
				"amount":      MilestoneBonus.StringFixed(2),
			}).Info("Referral milestone bonus paid")
		}
	}

	if !user.WelcomeBonusPaid {
		if err := tx.AdjustBalance(user.ID, WelcomeBonus); err != nil {
			return err
		}
		if err := tx.MarkWelcomeBonusPaid(user.ID); err != nil {
			return err
		}
		// Never lowers a rate already above the referred bump.
		if err := tx.RaiseYieldPercentTo(user.ID, domain.ReferredYieldPercent); err != nil {
			return err
		}
		if err := tx.CreateAuditLog(domain.AuditWelcomeBonusPaid,
			"User "+user.Email+" received $"+WelcomeBonus.StringFixed(2)+
				" welcome bonus. Yield raised to "+strconv.Itoa(domain.ReferredYieldPercent)+
				"% (referred user with $"+QualificationThreshold.StringFixed(2)+"+ deposits)",
			&user.ID); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"amount":  WelcomeBonus.StringFixed(2),
		}).Info("Welcome bonus paid")
	}

	return nil
}
