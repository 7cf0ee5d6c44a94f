package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Yield rates are whole percentage points. Every user starts at the base
// rate and earns +1 per qualified referral, capped at MaxYieldPercent.
const (
	BaseYieldPercent     = 10
	ReferredYieldPercent = 11
	MaxYieldPercent      = 30
)

// User Model
type User struct {
	ID                 string          `gorm:"type:uuid;primaryKey" json:"id"`
	FullName           string          `gorm:"not null" json:"fullName"`
	Email              string          `gorm:"unique;not null" json:"email"`
	Password           string          `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	ReferralCode       string          `gorm:"unique;not null" json:"referralCode"`
	ReferredBy         *string         `gorm:"type:uuid" json:"referredBy"` // weak reference to the referrer's id
	Balance            decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"balance"`
	IsBlocked          bool            `gorm:"not null;default:false" json:"isBlocked"`
	DeviceID           *string         `json:"deviceId,omitempty"`
	QualifiedReferrals int             `gorm:"not null;default:0" json:"qualifiedReferrals"`
	TotalYieldPercent  int             `gorm:"not null;default:10" json:"totalYieldPercent"`
	ReferralBonusPaid  bool            `gorm:"not null;default:false" json:"referralBonusPaid"`
	WelcomeBonusPaid   bool            `gorm:"not null;default:false" json:"welcomeBonusPaid"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// BeforeCreate assigns a uuid primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
