package sweep

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"yieldly/internal/domain"
	"yieldly/internal/store"
)

// Ledger is the slice of the ledger store the sweep needs.
type Ledger interface {
	MatureUnpaidInvestments(now time.Time) ([]domain.Investment, error)
	MarkInvestmentPaid(id string) (bool, error)
	AdjustBalance(userID string, delta decimal.Decimal) error
	GetUser(id string) (*domain.User, error)
	CreateAuditLog(action, details string, targetUserID *string) error
}

// TxLedger runs ledger operations transactionally.
type TxLedger interface {
	Ledger
	WithTx(fn func(tx Ledger) error) error
}

// Sweeper settles matured investments on a fixed interval. Every pass is
// idempotent: settlement is guarded by the investment's profit_paid flag,
// so overlapping or repeated runs never double-credit.
type Sweeper struct {
	ledger   TxLedger
	interval time.Duration
}

func New(ledger TxLedger, interval time.Duration) *Sweeper {
	return &Sweeper{ledger: ledger, interval: interval}
}

// Run sweeps immediately, then on every interval tick until the context is
// cancelled. A failing pass is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	logrus.WithField("interval", s.interval.String()).Info("Maturity sweep started")
	if err := s.Sweep(time.Now().UTC()); err != nil {
		logrus.WithError(err).Error("Maturity sweep pass failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Maturity sweep stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(time.Now().UTC()); err != nil {
				logrus.WithError(err).Error("Maturity sweep pass failed")
			}
		}
	}
}

// Sweep settles every investment matured as of now. Each investment is
// settled in its own transaction so one failure cannot block the rest of
// the batch.
func (s *Sweeper) Sweep(now time.Time) error {
	matured, err := s.ledger.MatureUnpaidInvestments(now)
	if err != nil {
		return err
	}
	for i := range matured {
		inv := matured[i]
		if err := s.settle(&inv); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"investment_id": inv.ID,
				"user_id":       inv.UserID,
			}).Error("Failed to settle matured investment")
		}
	}
	return nil
}

func (s *Sweeper) settle(inv *domain.Investment) error {
	user, err := s.ledger.GetUser(inv.UserID)
	if err != nil {
		return err
	}

	profit := inv.Profit()
	payout := inv.Payout()

	return s.ledger.WithTx(func(tx Ledger) error {
		// The conditional mark is the exactly-once gate: zero rows means a
		// concurrent run already paid, so no credit happens here.
		marked, err := tx.MarkInvestmentPaid(inv.ID)
		if err != nil {
			return err
		}
		if !marked {
			return nil
		}
		if err := tx.AdjustBalance(inv.UserID, payout); err != nil {
			return err
		}
		if err := tx.CreateAuditLog(domain.AuditInvestmentMatured,
			"Investment matured for "+user.Email+": principal $"+inv.Amount.StringFixed(2)+
				" + profit $"+profit.StringFixed(2)+" = $"+payout.StringFixed(2)+" credited",
			&inv.UserID); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"investment_id": inv.ID,
			"user_id":       inv.UserID,
			"principal":     inv.Amount.StringFixed(6),
			"profit":        profit.StringFixed(6),
			"payout":        payout.StringFixed(6),
			"profit_rate":   inv.ProfitRate,
		}).Info("Investment settled")
		return nil
	})
}

// storeLedger adapts *store.Store to TxLedger.
type storeLedger struct {
	*store.Store
}

// Wrap exposes a ledger store as the sweep's transactional ledger.
func Wrap(s *store.Store) TxLedger {
	return storeLedger{s}
}

func (s storeLedger) WithTx(fn func(tx Ledger) error) error {
	return s.Store.WithTx(func(tx *store.Store) error {
		return fn(storeLedger{tx})
	})
}
