package store

import (
	"time"

	"yieldly/internal/domain"
)

func (s *Store) CreateWithdrawal(w *domain.Withdrawal) error {
	return s.db.Create(w).Error
}

func (s *Store) GetWithdrawal(id string) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	if err := s.db.Where("id = ?", id).Take(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) WithdrawalsByUser(userID string) ([]domain.Withdrawal, error) {
	var ws []domain.Withdrawal
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&ws).Error
	return ws, err
}

func (s *Store) AllWithdrawals() ([]domain.Withdrawal, error) {
	var ws []domain.Withdrawal
	err := s.db.Order("created_at desc").Find(&ws).Error
	return ws, err
}

// TransitionWithdrawalStatus moves a pending withdrawal to processed or
// rejected. Zero rows means it was already reviewed.
func (s *Store) TransitionWithdrawalStatus(id, to string) (bool, error) {
	now := time.Now().UTC()
	res := s.db.Model(&domain.Withdrawal{}).
		Where("id = ? AND status = ?", id, domain.WithdrawalPending).
		Updates(map[string]any{"status": to, "reviewed_at": now})
	return res.RowsAffected > 0, res.Error
}
