package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QualificationMarker is the sentinel stored in InvestmentID for the
// zero-amount commission row that records a referral qualification.
const QualificationMarker = "referral-qualification"

// ReferralCommission is an append-only audit record of a qualification
// event. The (ReferrerID, FromUserID) pair is the once-only guard: a second
// qualification for the same referred user is never written.
type ReferralCommission struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	ReferrerID   string          `gorm:"type:uuid;not null;index" json:"referrerId"`
	FromUserID   string          `gorm:"type:uuid;not null;index" json:"fromUserId"`
	InvestmentID string          `gorm:"not null" json:"investmentId"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (r *ReferralCommission) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
