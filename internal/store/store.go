package store

import (
	"gorm.io/gorm" // GORM ORM library

	"yieldly/internal/domain"
)

// Store is the ledger store: every durable read and state transition goes
// through it. Multi-step mutations run inside WithTx so a crash rolls the
// whole step back; single balance deltas are atomic SQL expressions.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx runs fn against a transaction-scoped store. Returning an error
// rolls back everything fn did.
func (s *Store) WithTx(fn func(tx *Store) error) error {
	return s.db.Transaction(func(txdb *gorm.DB) error {
		return fn(&Store{db: txdb})
	})
}

// CreateAuditLog appends to the audit trail. Entries are never mutated.
func (s *Store) CreateAuditLog(action, details string, targetUserID *string) error {
	entry := domain.AuditLog{
		Action:       action,
		Details:      details,
		TargetUserID: targetUserID,
	}
	return s.db.Create(&entry).Error
}

// AuditLogs returns the most recent entries, bounded by limit.
func (s *Store) AuditLogs(limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	err := s.db.Order("created_at desc").Limit(limit).Find(&logs).Error
	return logs, err
}
