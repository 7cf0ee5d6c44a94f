package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deposit statuses. Transitions are one way: pending -> approved or
// pending -> rejected, terminal once set.
const (
	DepositPending  = "pending"
	DepositApproved = "approved"
	DepositRejected = "rejected"
)

// Deposit Model. Amount and txid are immutable after creation; only the
// status and review timestamp change, and only through an admin decision.
type Deposit struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string          `gorm:"type:uuid;not null;index" json:"userId"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	Txid          string          `gorm:"not null" json:"txid"` // user-supplied claim, unverified
	ScreenshotURL string          `json:"screenshotUrl"`
	Status        string          `gorm:"not null;default:pending;index" json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	ReviewedAt    *time.Time      `json:"reviewedAt"`
}

func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
