package store

import (
	"time"

	"yieldly/internal/domain"
)

func (s *Store) CreateInvestment(inv *domain.Investment) error {
	return s.db.Create(inv).Error
}

func (s *Store) GetInvestment(id string) (*domain.Investment, error) {
	var inv domain.Investment
	if err := s.db.Where("id = ?", id).Take(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) InvestmentsByUser(userID string) ([]domain.Investment, error) {
	var invs []domain.Investment
	err := s.db.Where("user_id = ?", userID).Order("started_at desc").Find(&invs).Error
	return invs, err
}

func (s *Store) AllInvestments() ([]domain.Investment, error) {
	var invs []domain.Investment
	err := s.db.Order("started_at desc").Find(&invs).Error
	return invs, err
}

// HasInvestmentForDeposit is the idempotency primitive behind deposit
// approval: at most one investment may reference a deposit.
func (s *Store) HasInvestmentForDeposit(depositID string) (bool, error) {
	var n int64
	err := s.db.Model(&domain.Investment{}).Where("deposit_id = ?", depositID).Count(&n).Error
	return n > 0, err
}

// MatureUnpaidInvestments returns every active, unpaid investment whose
// maturity has passed. The profit_paid predicate is the sweep's sole
// de-duplication mechanism.
func (s *Store) MatureUnpaidInvestments(now time.Time) ([]domain.Investment, error) {
	var invs []domain.Investment
	err := s.db.
		Where("status = ? AND profit_paid = ? AND matures_at <= ?",
			domain.InvestmentActive, false, now).
		Find(&invs).Error
	return invs, err
}

// MarkInvestmentPaid flips profit_paid and status together, conditional on
// profit_paid still being false. A zero-row result means another run
// already settled this investment and the caller must not credit.
func (s *Store) MarkInvestmentPaid(id string) (bool, error) {
	res := s.db.Model(&domain.Investment{}).
		Where("id = ? AND profit_paid = ?", id, false).
		Updates(map[string]any{"profit_paid": true, "status": domain.InvestmentCompleted})
	return res.RowsAffected > 0, res.Error
}
