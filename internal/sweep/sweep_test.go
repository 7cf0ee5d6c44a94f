package sweep

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldly/internal/domain"
)

// fakeLedger implements TxLedger in memory with the store's conditional
// settlement semantics.
type fakeLedger struct {
	users       map[string]*domain.User
	investments map[string]*domain.Investment
	audits      []string

	failGetUser map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:       map[string]*domain.User{},
		investments: map[string]*domain.Investment{},
		failGetUser: map[string]bool{},
	}
}

func (f *fakeLedger) WithTx(fn func(tx Ledger) error) error { return fn(f) }

func (f *fakeLedger) MatureUnpaidInvestments(now time.Time) ([]domain.Investment, error) {
	var out []domain.Investment
	for _, inv := range f.investments {
		if inv.Status == domain.InvestmentActive && !inv.ProfitPaid && !inv.MaturesAt.After(now) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeLedger) MarkInvestmentPaid(id string) (bool, error) {
	inv, ok := f.investments[id]
	if !ok || inv.ProfitPaid {
		return false, nil
	}
	inv.ProfitPaid = true
	inv.Status = domain.InvestmentCompleted
	return true, nil
}

func (f *fakeLedger) AdjustBalance(userID string, delta decimal.Decimal) error {
	u, ok := f.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.Balance = u.Balance.Add(delta)
	return nil
}

func (f *fakeLedger) GetUser(id string) (*domain.User, error) {
	if f.failGetUser[id] {
		return nil, errors.New("user lookup failed")
	}
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (f *fakeLedger) CreateAuditLog(action, details string, targetUserID *string) error {
	f.audits = append(f.audits, action)
	return nil
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func matured(id, userID string, amount int64, rate int) *domain.Investment {
	started := time.Now().UTC().Add(-domain.InvestmentTerm - time.Hour)
	return &domain.Investment{
		ID:         id,
		UserID:     userID,
		DepositID:  "dep-" + id,
		Amount:     dec(amount),
		ProfitRate: rate,
		StartedAt:  started,
		MaturesAt:  started.Add(domain.InvestmentTerm),
		Status:     domain.InvestmentActive,
	}
}

func TestSweep(t *testing.T) {
	t.Run("credits principal plus profit exactly once", func(t *testing.T) {
		f := newFakeLedger()
		f.users["u1"] = &domain.User{ID: "u1", Email: "u1@example.com"}
		f.investments["i1"] = matured("i1", "u1", 100, 13)
		s := New(f, time.Minute)

		require.NoError(t, s.Sweep(time.Now().UTC()))

		assert.True(t, f.users["u1"].Balance.Equal(dec(113)),
			"got %s", f.users["u1"].Balance)
		assert.True(t, f.investments["i1"].ProfitPaid)
		assert.Equal(t, domain.InvestmentCompleted, f.investments["i1"].Status)
		assert.Equal(t, []string{domain.AuditInvestmentMatured}, f.audits)

		// A second pass finds nothing to settle.
		require.NoError(t, s.Sweep(time.Now().UTC()))
		assert.True(t, f.users["u1"].Balance.Equal(dec(113)))
		assert.Len(t, f.audits, 1)
	})

	t.Run("skips investments that are not yet mature", func(t *testing.T) {
		f := newFakeLedger()
		f.users["u1"] = &domain.User{ID: "u1"}
		inv := matured("i1", "u1", 100, 10)
		inv.MaturesAt = time.Now().UTC().Add(time.Hour)
		f.investments["i1"] = inv
		s := New(f, time.Minute)

		require.NoError(t, s.Sweep(time.Now().UTC()))
		assert.True(t, f.users["u1"].Balance.IsZero())
		assert.False(t, f.investments["i1"].ProfitPaid)
	})

	t.Run("does not credit when another run already settled", func(t *testing.T) {
		f := newFakeLedger()
		f.users["u1"] = &domain.User{ID: "u1"}
		inv := matured("i1", "u1", 100, 10)
		f.investments["i1"] = inv
		s := New(f, time.Minute)

		// Simulate a concurrent run winning the conditional mark between
		// the listing and the settlement.
		batch, err := f.MatureUnpaidInvestments(time.Now().UTC())
		require.NoError(t, err)
		require.Len(t, batch, 1)
		_, err = f.MarkInvestmentPaid("i1")
		require.NoError(t, err)

		require.NoError(t, s.settle(&batch[0]))
		assert.True(t, f.users["u1"].Balance.IsZero())
	})

	t.Run("one failing settlement does not block the batch", func(t *testing.T) {
		f := newFakeLedger()
		f.users["u1"] = &domain.User{ID: "u1"}
		f.users["u2"] = &domain.User{ID: "u2"}
		f.failGetUser["u1"] = true
		f.investments["i1"] = matured("i1", "u1", 100, 10)
		f.investments["i2"] = matured("i2", "u2", 50, 20)
		s := New(f, time.Minute)

		require.NoError(t, s.Sweep(time.Now().UTC()))

		assert.False(t, f.investments["i1"].ProfitPaid)
		assert.True(t, f.investments["i2"].ProfitPaid)
		assert.True(t, f.users["u2"].Balance.Equal(dec(60)))
	})

	t.Run("fractional amounts settle at six decimals", func(t *testing.T) {
		f := newFakeLedger()
		f.users["u1"] = &domain.User{ID: "u1"}
		inv := matured("i1", "u1", 0, 11)
		inv.Amount = decimal.RequireFromString("33.333333")
		f.investments["i1"] = inv
		s := New(f, time.Minute)

		require.NoError(t, s.Sweep(time.Now().UTC()))

		want := decimal.RequireFromString("33.333333").
			Add(decimal.RequireFromString("3.666667"))
		assert.True(t, f.users["u1"].Balance.Equal(want),
			"got %s", f.users["u1"].Balance)
	})
}
