package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Investment statuses. The only transition is active -> completed, made
// exactly once by the maturity sweep. There is no cancellation path.
const (
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
)

// InvestmentTerm is the fixed duration between start and maturity.
const InvestmentTerm = 72 * time.Hour

// Investment Model. Amount is copied from the deposit and ProfitRate is
// snapshotted from the user's yield at start; both stay fixed even if the
// user's rate changes later. Invariant: ProfitPaid is true iff Status is
// completed, and at most one investment references a given deposit.
type Investment struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string          `gorm:"type:uuid;not null;index" json:"userId"`
	DepositID  string          `gorm:"type:uuid;not null;uniqueIndex" json:"depositId"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	ProfitRate int             `gorm:"not null;default:10" json:"profitRate"`
	StartedAt  time.Time       `json:"startedAt"`
	MaturesAt  time.Time       `gorm:"not null;index" json:"maturesAt"`
	ProfitPaid bool            `gorm:"not null;default:false" json:"profitPaid"`
	Status     string          `gorm:"not null;default:active;index" json:"status"`
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Profit returns amount * rate/100 at the ledger's 6-decimal scale.
func (i *Investment) Profit() decimal.Decimal {
	return i.Amount.Mul(decimal.NewFromInt(int64(i.ProfitRate))).
		Div(decimal.NewFromInt(100)).Round(6)
}

// Payout returns principal plus profit.
func (i *Investment) Payout() decimal.Decimal {
	return i.Amount.Add(i.Profit())
}
