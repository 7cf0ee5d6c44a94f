package lifecycle

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"yieldly/internal/apperr"
	"yieldly/internal/config"
	"yieldly/internal/domain"
	"yieldly/internal/referral"
	"yieldly/internal/store"
)

// Ledger is the slice of the ledger store the manager needs, extending the
// qualification engine's view with deposit and investment transitions.
type Ledger interface {
	referral.Ledger
	GetDeposit(id string) (*domain.Deposit, error)
	TransitionDepositStatus(id, from, to string) (bool, error)
	HasInvestmentForDeposit(depositID string) (bool, error)
	CreateInvestment(inv *domain.Investment) error
	DebitBalanceIfSufficient(userID string, amount decimal.Decimal) (bool, error)
	CreateWithdrawal(w *domain.Withdrawal) error
	GetWithdrawal(id string) (*domain.Withdrawal, error)
	TransitionWithdrawalStatus(id, to string) (bool, error)
}

// TxLedger runs ledger operations transactionally. WithTx hands the
// closure a transaction-scoped Ledger; an error rolls everything back.
type TxLedger interface {
	Ledger
	WithTx(fn func(tx Ledger) error) error
}

// Manager drives the deposit -> investment -> active lifecycle under the
// configured policy. The active -> completed transition belongs to the
// maturity sweep.
type Manager struct {
	ledger TxLedger
	policy string
}

func NewManager(ledger TxLedger, policy string) *Manager {
	return &Manager{ledger: ledger, policy: policy}
}

// ApproveDeposit transitions a deposit to approved and runs the policy's
// post-approval effects plus referral qualification, all in one
// transaction. Approving an already-approved deposit is accepted and does
// nothing twice: the has-investment check blocks a second investment and
// the qualification engine's one-shot guards block referral re-fire.
// A rejected deposit can never be approved.
func (m *Manager) ApproveDeposit(depositID string) (*domain.Deposit, error) {
	var approved *domain.Deposit
	err := m.ledger.WithTx(func(tx Ledger) error {
		deposit, err := tx.GetDeposit(depositID)
		if err != nil {
			return apperr.NotFound("Deposit not found")
		}
		if deposit.Status == domain.DepositRejected {
			return apperr.Conflict("Deposit has already been rejected")
		}

		firstApproval := false
		if deposit.Status == domain.DepositPending {
			moved, err := tx.TransitionDepositStatus(depositID, domain.DepositPending, domain.DepositApproved)
			if err != nil {
				return err
			}
			firstApproval = moved
			deposit.Status = domain.DepositApproved
		}

		user, err := tx.GetUser(deposit.UserID)
		if err != nil {
			return apperr.NotFound("User not found")
		}

		switch m.policy {
		case config.PolicyManualInvest:
			// Approval only releases the funds; the user starts the
			// investment explicitly.
			if firstApproval {
				if err := tx.AdjustBalance(user.ID, deposit.Amount); err != nil {
					return err
				}
			}
		default: // auto_invest
			hasInvestment, err := tx.HasInvestmentForDeposit(depositID)
			if err != nil {
				return err
			}
			if !hasInvestment {
				if _, err := openInvestment(tx, user, deposit); err != nil {
					return err
				}
			}
		}

		if err := referral.Apply(tx, user, deposit.Amount); err != nil {
			return err
		}

		if err := tx.CreateAuditLog(domain.AuditDepositApproved,
			"Deposit $"+deposit.Amount.StringFixed(2)+" approved for user "+user.Email,
			&user.ID); err != nil {
			return err
		}
		approved = deposit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// RejectDeposit terminally rejects a pending deposit with a reason.
func (m *Manager) RejectDeposit(depositID, reason string) (*domain.Deposit, error) {
	var rejected *domain.Deposit
	err := m.ledger.WithTx(func(tx Ledger) error {
		deposit, err := tx.GetDeposit(depositID)
		if err != nil {
			return apperr.NotFound("Deposit not found")
		}
		moved, err := tx.TransitionDepositStatus(depositID, domain.DepositPending, domain.DepositRejected)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.Conflict("Deposit has already been reviewed")
		}
		deposit.Status = domain.DepositRejected
		if err := tx.CreateAuditLog(domain.AuditDepositRejected,
			"Deposit $"+deposit.Amount.StringFixed(2)+" rejected. Reason: "+reason,
			&deposit.UserID); err != nil {
			return err
		}
		rejected = deposit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// StartInvestment opens the investment for an approved deposit on the
// caller's behalf. Manual policy only at the API surface, but the checks
// hold under either policy.
func (m *Manager) StartInvestment(userID, depositID string) (*domain.Investment, error) {
	var created *domain.Investment
	err := m.ledger.WithTx(func(tx Ledger) error {
		deposit, err := tx.GetDeposit(depositID)
		if err != nil {
			return apperr.NotFound("Deposit not found")
		}
		if deposit.UserID != userID {
			return apperr.Forbidden("Unauthorized")
		}
		if deposit.Status != domain.DepositApproved {
			return apperr.Validation("Deposit must be approved before starting an investment")
		}
		hasInvestment, err := tx.HasInvestmentForDeposit(depositID)
		if err != nil {
			return err
		}
		if hasInvestment {
			return apperr.Validation("Investment already started for this deposit")
		}
		user, err := tx.GetUser(userID)
		if err != nil {
			return apperr.NotFound("User not found")
		}
		created, err = openInvestment(tx, user, deposit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// openInvestment snapshots the user's current yield rate and opens the
// 72-hour position. The rate stays fixed for the life of the investment.
func openInvestment(tx Ledger, user *domain.User, deposit *domain.Deposit) (*domain.Investment, error) {
	now := time.Now().UTC()
	inv := domain.Investment{
		UserID:     user.ID,
		DepositID:  deposit.ID,
		Amount:     deposit.Amount,
		ProfitRate: user.TotalYieldPercent,
		StartedAt:  now,
		MaturesAt:  now.Add(domain.InvestmentTerm),
		Status:     domain.InvestmentActive,
	}
	if err := tx.CreateInvestment(&inv); err != nil {
		return nil, err
	}
	if err := tx.CreateAuditLog(domain.AuditInvestmentStarted,
		"Investment of $"+deposit.Amount.StringFixed(2)+" started at "+
			strconv.Itoa(user.TotalYieldPercent)+"% yield rate",
		&user.ID); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":       user.ID,
		"deposit_id":    deposit.ID,
		"investment_id": inv.ID,
		"amount":        deposit.Amount.StringFixed(6),
		"profit_rate":   user.TotalYieldPercent,
		"matures_at":    inv.MaturesAt.Format(time.RFC3339),
	}).Info("Investment started")
	return &inv, nil
}

// SubmitWithdrawal debits the balance and records the pending withdrawal
// in one transaction. The conditional debit is the sufficiency check, so
// the balance can never go negative between check and debit.
func (m *Manager) SubmitWithdrawal(userID string, amount decimal.Decimal, usdtAddress string) (*domain.Withdrawal, error) {
	var created *domain.Withdrawal
	err := m.ledger.WithTx(func(tx Ledger) error {
		w, err := submitWithdrawalTx(tx, userID, amount, usdtAddress)
		if err != nil {
			return err
		}
		created = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func submitWithdrawalTx(tx Ledger, userID string, amount decimal.Decimal, usdtAddress string) (*domain.Withdrawal, error) {
	debited, err := tx.DebitBalanceIfSufficient(userID, amount)
	if err != nil {
		return nil, err
	}
	if !debited {
		return nil, apperr.InsufficientFunds()
	}
	w := domain.Withdrawal{
		UserID:      userID,
		Amount:      amount,
		USDTAddress: usdtAddress,
		Status:      domain.WithdrawalPending,
	}
	if err := tx.CreateWithdrawal(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ProcessWithdrawal marks a pending withdrawal processed.
func (m *Manager) ProcessWithdrawal(withdrawalID string) (*domain.Withdrawal, error) {
	return m.reviewWithdrawal(withdrawalID, domain.WithdrawalProcessed)
}

// RejectWithdrawal marks a pending withdrawal rejected and re-credits the
// exact recorded amount in the same transaction, so concurrent balance
// edits cannot cause drift.
func (m *Manager) RejectWithdrawal(withdrawalID string) (*domain.Withdrawal, error) {
	return m.reviewWithdrawal(withdrawalID, domain.WithdrawalRejected)
}

func (m *Manager) reviewWithdrawal(withdrawalID, to string) (*domain.Withdrawal, error) {
	var reviewed *domain.Withdrawal
	err := m.ledger.WithTx(func(tx Ledger) error {
		w, err := tx.GetWithdrawal(withdrawalID)
		if err != nil {
			return apperr.NotFound("Withdrawal not found")
		}
		moved, err := tx.TransitionWithdrawalStatus(withdrawalID, to)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.Conflict("Withdrawal has already been reviewed")
		}
		w.Status = to

		if to == domain.WithdrawalRejected {
			if err := tx.AdjustBalance(w.UserID, w.Amount); err != nil {
				return err
			}
			if err := tx.CreateAuditLog(domain.AuditWithdrawalRejected,
				"Withdrawal $"+w.Amount.StringFixed(2)+" rejected, balance refunded",
				&w.UserID); err != nil {
				return err
			}
		} else {
			if err := tx.CreateAuditLog(domain.AuditWithdrawalProcessed,
				"Withdrawal $"+w.Amount.StringFixed(2)+" processed to "+w.USDTAddress,
				&w.UserID); err != nil {
				return err
			}
		}
		reviewed = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// storeLedger adapts *store.Store to TxLedger.
type storeLedger struct {
	*store.Store
}

// Wrap exposes a ledger store as the manager's transactional ledger.
func Wrap(s *store.Store) TxLedger {
	return storeLedger{s}
}

func (s storeLedger) WithTx(fn func(tx Ledger) error) error {
	return s.Store.WithTx(func(tx *store.Store) error {
		return fn(storeLedger{tx})
	})
}
