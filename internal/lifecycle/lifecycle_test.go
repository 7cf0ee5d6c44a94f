package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldly/internal/apperr"
	"yieldly/internal/config"
	"yieldly/internal/domain"
)

// fakeLedger implements TxLedger in memory with the same conditional
// update semantics as the SQL store. WithTx runs the closure directly;
// rollback behavior is out of scope here.
type fakeLedger struct {
	users       map[string]*domain.User
	deposits    map[string]*domain.Deposit
	investments map[string]*domain.Investment
	withdrawals map[string]*domain.Withdrawal
	commissions []domain.ReferralCommission
	audits      []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:       map[string]*domain.User{},
		deposits:    map[string]*domain.Deposit{},
		investments: map[string]*domain.Investment{},
		withdrawals: map[string]*domain.Withdrawal{},
	}
}

func (f *fakeLedger) WithTx(fn func(tx Ledger) error) error { return fn(f) }

func (f *fakeLedger) GetUser(id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (f *fakeLedger) TotalApprovedDeposits(userID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range f.deposits {
		if d.UserID == userID && d.Status == domain.DepositApproved {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}

func (f *fakeLedger) HasQualifiedReferralFor(referrerID, fromUserID string) (bool, error) {
	for _, c := range f.commissions {
		if c.ReferrerID == referrerID && c.FromUserID == fromUserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) IncrementQualifiedReferrals(userID string) (*domain.User, error) {
	u, err := f.GetUser(userID)
	if err != nil {
		return nil, err
	}
	u.QualifiedReferrals++
	if u.TotalYieldPercent < domain.MaxYieldPercent {
		u.TotalYieldPercent++
	}
	return u, nil
}

func (f *fakeLedger) CreateCommission(c *domain.ReferralCommission) error {
	f.commissions = append(f.commissions, *c)
	return nil
}

func (f *fakeLedger) AdjustBalance(userID string, delta decimal.Decimal) error {
	u, err := f.GetUser(userID)
	if err != nil {
		return err
	}
	u.Balance = u.Balance.Add(delta)
	return nil
}

func (f *fakeLedger) MarkReferralBonusPaid(userID string) error {
	u, err := f.GetUser(userID)
	if err != nil {
		return err
	}
	u.ReferralBonusPaid = true
	return nil
}

func (f *fakeLedger) MarkWelcomeBonusPaid(userID string) error {
	u, err := f.GetUser(userID)
	if err != nil {
		return err
	}
	u.WelcomeBonusPaid = true
	return nil
}

func (f *fakeLedger) RaiseYieldPercentTo(userID string, pct int) error {
	u, err := f.GetUser(userID)
	if err != nil {
		return err
	}
	if pct > u.TotalYieldPercent {
		u.TotalYieldPercent = pct
	}
	if u.TotalYieldPercent > domain.MaxYieldPercent {
		u.TotalYieldPercent = domain.MaxYieldPercent
	}
	return nil
}

func (f *fakeLedger) CreateAuditLog(action, details string, targetUserID *string) error {
	f.audits = append(f.audits, action)
	return nil
}

func (f *fakeLedger) GetDeposit(id string) (*domain.Deposit, error) {
	d, ok := f.deposits[id]
	if !ok {
		return nil, errors.New("deposit not found")
	}
	cp := *d
	return &cp, nil
}

func (f *fakeLedger) TransitionDepositStatus(id, from, to string) (bool, error) {
	d, ok := f.deposits[id]
	if !ok || d.Status != from {
		return false, nil
	}
	now := time.Now().UTC()
	d.Status = to
	d.ReviewedAt = &now
	return true, nil
}

func (f *fakeLedger) HasInvestmentForDeposit(depositID string) (bool, error) {
	for _, inv := range f.investments {
		if inv.DepositID == depositID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) CreateInvestment(inv *domain.Investment) error {
	if inv.ID == "" {
		inv.ID = "inv-" + inv.DepositID
	}
	f.investments[inv.ID] = inv
	return nil
}

func (f *fakeLedger) DebitBalanceIfSufficient(userID string, amount decimal.Decimal) (bool, error) {
	u, err := f.GetUser(userID)
	if err != nil {
		return false, err
	}
	if u.Balance.LessThan(amount) {
		return false, nil
	}
	u.Balance = u.Balance.Sub(amount)
	return true, nil
}

func (f *fakeLedger) CreateWithdrawal(w *domain.Withdrawal) error {
	if w.ID == "" {
		w.ID = "w-" + w.UserID
	}
	f.withdrawals[w.ID] = w
	return nil
}

func (f *fakeLedger) GetWithdrawal(id string) (*domain.Withdrawal, error) {
	w, ok := f.withdrawals[id]
	if !ok {
		return nil, errors.New("withdrawal not found")
	}
	cp := *w
	return &cp, nil
}

func (f *fakeLedger) TransitionWithdrawalStatus(id, to string) (bool, error) {
	w, ok := f.withdrawals[id]
	if !ok || w.Status != domain.WithdrawalPending {
		return false, nil
	}
	now := time.Now().UTC()
	w.Status = to
	w.ReviewedAt = &now
	return true, nil
}

func (f *fakeLedger) addUser(u *domain.User) *domain.User {
	f.users[u.ID] = u
	return u
}

func (f *fakeLedger) addDeposit(d *domain.Deposit) *domain.Deposit {
	f.deposits[d.ID] = d
	return d
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestApproveDeposit(t *testing.T) {
	t.Run("auto invest opens one investment at the current rate", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", Email: "u1@example.com", TotalYieldPercent: 13})
		f.addDeposit(&domain.Deposit{
			ID: "d1", UserID: "u1", Amount: dec(100), Status: domain.DepositPending,
		})
		mgr := NewManager(f, config.PolicyAutoInvest)

		deposit, err := mgr.ApproveDeposit("d1")
		require.NoError(t, err)
		assert.Equal(t, domain.DepositApproved, deposit.Status)

		require.Len(t, f.investments, 1)
		for _, inv := range f.investments {
			assert.Equal(t, "d1", inv.DepositID)
			assert.Equal(t, 13, inv.ProfitRate)
			assert.True(t, inv.Amount.Equal(dec(100)))
			assert.Equal(t, domain.InvestmentTerm, inv.MaturesAt.Sub(inv.StartedAt))
			assert.Equal(t, domain.InvestmentActive, inv.Status)
		}
		// Principal is invested, not credited.
		assert.True(t, f.users["u1"].Balance.IsZero())
	})

	t.Run("re-approval is idempotent", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", TotalYieldPercent: domain.BaseYieldPercent})
		f.addDeposit(&domain.Deposit{
			ID: "d1", UserID: "u1", Amount: dec(100), Status: domain.DepositPending,
		})
		mgr := NewManager(f, config.PolicyAutoInvest)

		_, err := mgr.ApproveDeposit("d1")
		require.NoError(t, err)
		_, err = mgr.ApproveDeposit("d1")
		require.NoError(t, err)

		assert.Len(t, f.investments, 1)
	})

	t.Run("rejected deposit cannot be approved", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", TotalYieldPercent: domain.BaseYieldPercent})
		f.addDeposit(&domain.Deposit{
			ID: "d1", UserID: "u1", Amount: dec(100), Status: domain.DepositRejected,
		})
		mgr := NewManager(f, config.PolicyAutoInvest)

		_, err := mgr.ApproveDeposit("d1")
		require.Error(t, err)
		assert.Equal(t, 409, apperr.From(err).Status)
		assert.Empty(t, f.investments)
	})

	t.Run("unknown deposit is a 404", func(t *testing.T) {
		f := newFakeLedger()
		mgr := NewManager(f, config.PolicyAutoInvest)
		_, err := mgr.ApproveDeposit("missing")
		require.Error(t, err)
		assert.Equal(t, 404, apperr.From(err).Status)
	})

	t.Run("manual policy credits the balance exactly once", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", TotalYieldPercent: domain.BaseYieldPercent})
		f.addDeposit(&domain.Deposit{
			ID: "d1", UserID: "u1", Amount: dec(100), Status: domain.DepositPending,
		})
		mgr := NewManager(f, config.PolicyManualInvest)

		_, err := mgr.ApproveDeposit("d1")
		require.NoError(t, err)
		_, err = mgr.ApproveDeposit("d1")
		require.NoError(t, err)

		assert.True(t, f.users["u1"].Balance.Equal(dec(100)))
		assert.Empty(t, f.investments)
	})

	t.Run("approval qualifies the referral", func(t *testing.T) {
		f := newFakeLedger()
		referrer := f.addUser(&domain.User{ID: "ref", TotalYieldPercent: domain.BaseYieldPercent})
		f.addUser(&domain.User{
			ID: "u1", ReferredBy: &referrer.ID, TotalYieldPercent: domain.BaseYieldPercent,
		})
		f.addDeposit(&domain.Deposit{
			ID: "d1", UserID: "u1", Amount: dec(60), Status: domain.DepositPending,
		})
		mgr := NewManager(f, config.PolicyAutoInvest)

		_, err := mgr.ApproveDeposit("d1")
		require.NoError(t, err)

		assert.Equal(t, 1, referrer.QualifiedReferrals)
		assert.True(t, f.users["u1"].WelcomeBonusPaid)
		require.Len(t, f.commissions, 1)
		assert.Equal(t, domain.QualificationMarker, f.commissions[0].InvestmentID)
	})
}

func TestRejectDeposit(t *testing.T) {
	f := newFakeLedger()
	f.addUser(&domain.User{ID: "u1", TotalYieldPercent: domain.BaseYieldPercent})
	f.addDeposit(&domain.Deposit{
		ID: "d1", UserID: "u1", Amount: dec(100), Status: domain.DepositPending,
	})
	mgr := NewManager(f, config.PolicyAutoInvest)

	deposit, err := mgr.RejectDeposit("d1", "txid not found on chain")
	require.NoError(t, err)
	assert.Equal(t, domain.DepositRejected, deposit.Status)
	assert.True(t, f.users["u1"].Balance.IsZero())

	// Rejection is terminal.
	_, err = mgr.RejectDeposit("d1", "second attempt")
	require.Error(t, err)
	assert.Equal(t, 409, apperr.From(err).Status)
	_, err = mgr.ApproveDeposit("d1")
	require.Error(t, err)
}

func TestStartInvestment(t *testing.T) {
	setup := func() (*fakeLedger, *Manager) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", TotalYieldPercent: 12})
		f.addUser(&domain.User{ID: "u2", TotalYieldPercent: domain.BaseYieldPercent})
		f.addDeposit(&domain.Deposit{
			ID: "d1", UserID: "u1", Amount: dec(200), Status: domain.DepositApproved,
		})
		return f, NewManager(f, config.PolicyManualInvest)
	}

	t.Run("opens the investment at the owner's rate", func(t *testing.T) {
		f, mgr := setup()
		inv, err := mgr.StartInvestment("u1", "d1")
		require.NoError(t, err)
		assert.Equal(t, 12, inv.ProfitRate)
		assert.True(t, inv.Amount.Equal(dec(200)))
		assert.Len(t, f.investments, 1)
	})

	t.Run("only the owner can start it", func(t *testing.T) {
		_, mgr := setup()
		_, err := mgr.StartInvestment("u2", "d1")
		require.Error(t, err)
		assert.Equal(t, 403, apperr.From(err).Status)
	})

	t.Run("pending deposit cannot be invested", func(t *testing.T) {
		f, mgr := setup()
		f.addDeposit(&domain.Deposit{
			ID: "d2", UserID: "u1", Amount: dec(50), Status: domain.DepositPending,
		})
		_, err := mgr.StartInvestment("u1", "d2")
		require.Error(t, err)
		assert.Equal(t, 400, apperr.From(err).Status)
	})

	t.Run("second start on the same deposit fails", func(t *testing.T) {
		_, mgr := setup()
		_, err := mgr.StartInvestment("u1", "d1")
		require.NoError(t, err)
		_, err = mgr.StartInvestment("u1", "d1")
		require.Error(t, err)
		assert.Equal(t, 400, apperr.From(err).Status)
	})
}

func TestWithdrawals(t *testing.T) {
	t.Run("submit debits up front", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", Balance: dec(100)})
		mgr := NewManager(f, config.PolicyAutoInvest)

		w, err := mgr.SubmitWithdrawal("u1", dec(40), "TXyzabcdef123")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalPending, w.Status)
		assert.True(t, f.users["u1"].Balance.Equal(dec(60)))
	})

	t.Run("insufficient balance leaves no record", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", Balance: dec(10)})
		mgr := NewManager(f, config.PolicyAutoInvest)

		_, err := mgr.SubmitWithdrawal("u1", dec(40), "TXyzabcdef123")
		require.Error(t, err)
		assert.Equal(t, 400, apperr.From(err).Status)
		assert.Empty(t, f.withdrawals)
		assert.True(t, f.users["u1"].Balance.Equal(dec(10)))
	})

	t.Run("rejection refunds the recorded amount", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", Balance: dec(100)})
		mgr := NewManager(f, config.PolicyAutoInvest)

		w, err := mgr.SubmitWithdrawal("u1", dec(40), "TXyzabcdef123")
		require.NoError(t, err)

		rejected, err := mgr.RejectWithdrawal(w.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalRejected, rejected.Status)
		assert.True(t, f.users["u1"].Balance.Equal(dec(100)))

		// A second review of any kind is refused.
		_, err = mgr.ProcessWithdrawal(w.ID)
		require.Error(t, err)
		assert.Equal(t, 409, apperr.From(err).Status)
	})

	t.Run("processing does not touch the balance again", func(t *testing.T) {
		f := newFakeLedger()
		f.addUser(&domain.User{ID: "u1", Balance: dec(100)})
		mgr := NewManager(f, config.PolicyAutoInvest)

		w, err := mgr.SubmitWithdrawal("u1", dec(40), "TXyzabcdef123")
		require.NoError(t, err)

		processed, err := mgr.ProcessWithdrawal(w.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalProcessed, processed.Status)
		assert.True(t, f.users["u1"].Balance.Equal(dec(60)))
	})
}
