package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Withdrawal statuses. The balance is debited when the request is created;
// a rejection credits the exact recorded amount back.
const (
	WithdrawalPending   = "pending"
	WithdrawalProcessed = "processed"
	WithdrawalRejected  = "rejected"
)

// Withdrawal Model
type Withdrawal struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"userId"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	USDTAddress string          `gorm:"not null" json:"usdtAddress"`
	Status      string          `gorm:"not null;default:pending;index" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ReviewedAt  *time.Time      `json:"reviewedAt"`
}

func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
