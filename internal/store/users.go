package store

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"yieldly/internal/domain"
)

func (s *Store) CreateUser(user *domain.User) error {
	return s.db.Create(user).Error
}

func (s *Store) GetUser(id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByReferralCode(code string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("referral_code = ?", code).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByDeviceID(deviceID string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("device_id = ?", deviceID).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ReferralCodeExists(code string) (bool, error) {
	var n int64
	err := s.db.Model(&domain.User{}).Where("referral_code = ?", code).Count(&n).Error
	return n > 0, err
}

// ReferralCount counts users referred by userID, qualified or not.
func (s *Store) ReferralCount(userID string) (int64, error) {
	var n int64
	err := s.db.Model(&domain.User{}).Where("referred_by = ?", userID).Count(&n).Error
	return n, err
}

func (s *Store) Referrals(userID string) ([]domain.User, error) {
	var users []domain.User
	err := s.db.Where("referred_by = ?", userID).Order("created_at desc").Find(&users).Error
	return users, err
}

func (s *Store) ListUsers() ([]domain.User, error) {
	var users []domain.User
	err := s.db.Order("created_at desc").Find(&users).Error
	return users, err
}

// AdjustBalance applies a signed delta as a single SQL expression, never
// read-modify-write, so concurrent settlements and withdrawals on the same
// user cannot lose updates.
func (s *Store) AdjustBalance(userID string, delta decimal.Decimal) error {
	return s.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
}

// DebitBalanceIfSufficient debits amount only when the balance covers it,
// in one conditional statement. Returns false if the balance was short.
func (s *Store) DebitBalanceIfSufficient(userID string, amount decimal.Decimal) (bool, error) {
	res := s.db.Model(&domain.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	return res.RowsAffected > 0, res.Error
}

// SetBalance replaces the balance outright. Admin override only; callers
// must write an audit entry alongside.
func (s *Store) SetBalance(userID string, balance decimal.Decimal) error {
	return s.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("balance", balance).Error
}

func (s *Store) SetBlocked(userID string, blocked bool) error {
	return s.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("is_blocked", blocked).Error
}

// IncrementQualifiedReferrals bumps the count and the yield rate together
// and returns the updated row. The yield gains one point per qualified
// referral, capped at the maximum.
func (s *Store) IncrementQualifiedReferrals(userID string) (*domain.User, error) {
	err := s.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"qualified_referrals": gorm.Expr("qualified_referrals + 1"),
			"total_yield_percent": gorm.Expr("LEAST(?, total_yield_percent + 1)", domain.MaxYieldPercent),
		}).Error
	if err != nil {
		return nil, err
	}
	return s.GetUser(userID)
}

// RaiseYieldPercentTo lifts the yield to at least pct without ever
// lowering an already-higher rate, clamped at the maximum.
func (s *Store) RaiseYieldPercentTo(userID string, pct int) error {
	return s.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("total_yield_percent",
			gorm.Expr("LEAST(?, GREATEST(total_yield_percent, ?))", domain.MaxYieldPercent, pct)).Error
}

func (s *Store) MarkWelcomeBonusPaid(userID string) error {
	return s.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("welcome_bonus_paid", true).Error
}

func (s *Store) MarkReferralBonusPaid(userID string) error {
	return s.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("referral_bonus_paid", true).Error
}
