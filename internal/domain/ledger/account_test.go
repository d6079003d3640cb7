package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountTryDeposit(t *testing.T) {
	a := newAccount()
	require.NoError(t, a.tryDeposit(1_0000))
	assert.Equal(t, Balance(1_0000), a.AvailableBalance())
	assert.Equal(t, Balance(1_0000), a.TotalBalance())
	assert.Equal(t, Balance(0), a.HeldBalance())

	t.Run("overflow leaves account untouched", func(t *testing.T) {
		a := Account{available: math.MaxInt64, total: math.MaxInt64}
		err := a.tryDeposit(1)
		require.ErrorIs(t, err, ErrBalanceWouldOverflow)
		assert.Equal(t, Balance(math.MaxInt64), a.AvailableBalance())
		assert.Equal(t, Balance(math.MaxInt64), a.TotalBalance())
	})
}

func TestAccountTryWithdraw(t *testing.T) {
	a := Account{available: 1_0000, total: 1_0000}
	require.NoError(t, a.tryWithdraw(4000))
	assert.Equal(t, Balance(6000), a.AvailableBalance())
	assert.Equal(t, Balance(6000), a.TotalBalance())

	t.Run("insufficient funds leaves account untouched", func(t *testing.T) {
		a := Account{available: 100, total: 100}
		err := a.tryWithdraw(101)
		require.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, Balance(100), a.AvailableBalance())
		assert.Equal(t, Balance(100), a.TotalBalance())
	})
}

func TestAccountDisputeResolveRoundTrip(t *testing.T) {
	a := Account{available: 3_0000, total: 3_0000}
	tx := &Transaction{Kind: Deposit, Amount: 2_0000, State: Accepted}

	require.NoError(t, a.tryDispute(tx))
	assert.Equal(t, State(Disputed), tx.State)
	assert.Equal(t, Balance(1_0000), a.AvailableBalance())
	assert.Equal(t, Balance(3_0000), a.TotalBalance())

	require.NoError(t, a.tryResolve(tx))
	assert.Equal(t, State(Accepted), tx.State)
	assert.Equal(t, Balance(3_0000), a.AvailableBalance())
	assert.Equal(t, Balance(3_0000), a.TotalBalance())
}

func TestAccountDisputeOfWithdrawalChangesNoBalance(t *testing.T) {
	a := Account{available: 3_0000, total: 3_0000}
	tx := &Transaction{Kind: Withdrawal, Amount: 2_0000, State: Accepted}

	require.NoError(t, a.tryDispute(tx))
	assert.Equal(t, State(Disputed), tx.State)
	assert.Equal(t, Balance(3_0000), a.AvailableBalance())
	assert.Equal(t, Balance(3_0000), a.TotalBalance())
}

func TestAccountChargebackDeposit(t *testing.T) {
	a := Account{available: 1_0000, total: 3_0000}
	tx := &Transaction{Kind: Deposit, Amount: 2_0000, State: Disputed}

	require.NoError(t, a.tryChargeback(tx))
	assert.Equal(t, State(Reversed), tx.State)
	assert.True(t, a.IsLocked())
	assert.Equal(t, Balance(1_0000), a.AvailableBalance())
	assert.Equal(t, Balance(1_0000), a.TotalBalance())
}

func TestAccountChargebackWithdrawal(t *testing.T) {
	a := Account{available: 3_0000, total: 3_0000}
	tx := &Transaction{Kind: Withdrawal, Amount: 2_0000, State: Disputed}

	require.NoError(t, a.tryChargeback(tx))
	assert.Equal(t, State(Reversed), tx.State)
	assert.True(t, a.IsLocked())
	assert.Equal(t, Balance(5_0000), a.AvailableBalance())
	assert.Equal(t, Balance(5_0000), a.TotalBalance())
}

func TestAccountHeldBalanceIsDerived(t *testing.T) {
	a := Account{available: -1_0000, total: 0}
	assert.Equal(t, Balance(1_0000), a.HeldBalance())
}
