package store

import (
	"time"

	"github.com/shopspring/decimal"

	"yieldly/internal/domain"
)

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalUsers            int64           `json:"totalUsers"`
	TotalDeposits         decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals      decimal.Decimal `json:"totalWithdrawals"`
	ActiveInvestments     int64           `json:"activeInvestments"`
	PendingDeposits       int64           `json:"pendingDeposits"`
	PendingWithdrawals    int64           `json:"pendingWithdrawals"`
	TodayProfit           decimal.Decimal `json:"todayProfit"`
	TotalReferralEarnings decimal.Decimal `json:"totalReferralEarnings"`
}

// GetStats collects the dashboard aggregates in single SQL sums.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	if err := s.db.Model(&domain.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Deposit{}).
		Where("status = ?", domain.DepositApproved).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalDeposits).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Withdrawal{}).
		Where("status = ?", domain.WithdrawalProcessed).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalWithdrawals).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Investment{}).
		Where("status = ?", domain.InvestmentActive).
		Count(&stats.ActiveInvestments).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Deposit{}).
		Where("status = ?", domain.DepositPending).
		Count(&stats.PendingDeposits).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Withdrawal{}).
		Where("status = ?", domain.WithdrawalPending).
		Count(&stats.PendingWithdrawals).Error; err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	tomorrow := today.Add(24 * time.Hour)
	if err := s.db.Model(&domain.Investment{}).
		Where("status = ? AND profit_paid = ? AND matures_at >= ? AND matures_at < ?",
			domain.InvestmentCompleted, true, today, tomorrow).
		Select("COALESCE(SUM(amount * profit_rate / 100.0), 0)").Scan(&stats.TodayProfit).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.ReferralCommission{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalReferralEarnings).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
