package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions written by the system and admin endpoints.
const (
	AuditDepositSubmitted    = "deposit_submitted"
	AuditDepositApproved     = "deposit_approved"
	AuditDepositRejected     = "deposit_rejected"
	AuditInvestmentStarted   = "investment_started"
	AuditInvestmentMatured   = "investment_matured"
	AuditWithdrawalProcessed = "withdrawal_processed"
	AuditWithdrawalRejected  = "withdrawal_rejected"
	AuditReferralQualified   = "referral_qualified"
	AuditReferralMilestone   = "referral_milestone_bonus"
	AuditWelcomeBonusPaid    = "welcome_bonus_paid"
	AuditBalanceAdjusted     = "balance_adjusted"
	AuditUserBlocked         = "user_blocked"
	AuditUserUnblocked       = "user_unblocked"
)

// AuditLog is an append-only trail of every state-changing admin or system
// action. Rows are never mutated or deleted; retrieval is bounded.
type AuditLog struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Action       string    `gorm:"not null;index" json:"action"`
	Details      string    `json:"details"`
	TargetUserID *string   `gorm:"type:uuid" json:"targetUserId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
