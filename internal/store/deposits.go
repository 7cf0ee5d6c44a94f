package store

import (
	"time"

	"github.com/shopspring/decimal"

	"yieldly/internal/domain"
)

func (s *Store) CreateDeposit(deposit *domain.Deposit) error {
	return s.db.Create(deposit).Error
}

func (s *Store) GetDeposit(id string) (*domain.Deposit, error) {
	var deposit domain.Deposit
	if err := s.db.Where("id = ?", id).Take(&deposit).Error; err != nil {
		return nil, err
	}
	return &deposit, nil
}

func (s *Store) DepositsByUser(userID string) ([]domain.Deposit, error) {
	var deposits []domain.Deposit
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&deposits).Error
	return deposits, err
}

func (s *Store) AllDeposits() ([]domain.Deposit, error) {
	var deposits []domain.Deposit
	err := s.db.Order("created_at desc").Find(&deposits).Error
	return deposits, err
}

// TransitionDepositStatus moves a deposit from one status to another and
// stamps the review time. The from-status predicate makes the transition a
// guarded one-way step: zero rows means the deposit was not in from.
func (s *Store) TransitionDepositStatus(id, from, to string) (bool, error) {
	now := time.Now().UTC()
	res := s.db.Model(&domain.Deposit{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "reviewed_at": now})
	return res.RowsAffected > 0, res.Error
}

// TotalApprovedDeposits sums every approved deposit for the user at the
// ledger's fixed-point scale.
func (s *Store) TotalApprovedDeposits(userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.Model(&domain.Deposit{}).
		Where("user_id = ? AND status = ?", userID, domain.DepositApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ApprovedDepositsWithoutInvestment lists the caller's approved deposits
// that no investment references yet.
func (s *Store) ApprovedDepositsWithoutInvestment(userID string) ([]domain.Deposit, error) {
	sub := s.db.Model(&domain.Investment{}).Select("deposit_id").Where("user_id = ?", userID)
	var deposits []domain.Deposit
	err := s.db.Where("user_id = ? AND status = ? AND id NOT IN (?)",
		userID, domain.DepositApproved, sub).
		Order("created_at desc").Find(&deposits).Error
	return deposits, err
}
