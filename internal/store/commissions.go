package store

import (
	"yieldly/internal/domain"
)

func (s *Store) CreateCommission(c *domain.ReferralCommission) error {
	return s.db.Create(c).Error
}

func (s *Store) CommissionsByReferrer(referrerID string) ([]domain.ReferralCommission, error) {
	var cs []domain.ReferralCommission
	err := s.db.Where("referrer_id = ?", referrerID).Order("created_at desc").Find(&cs).Error
	return cs, err
}

func (s *Store) AllCommissions() ([]domain.ReferralCommission, error) {
	var cs []domain.ReferralCommission
	err := s.db.Order("created_at desc").Find(&cs).Error
	return cs, err
}

// HasQualifiedReferralFor reports whether a qualification marker already
// exists for the (referrer, referred user) pair.
func (s *Store) HasQualifiedReferralFor(referrerID, fromUserID string) (bool, error) {
	var n int64
	err := s.db.Model(&domain.ReferralCommission{}).
		Where("referrer_id = ? AND from_user_id = ?", referrerID, fromUserID).
		Count(&n).Error
	return n > 0, err
}
