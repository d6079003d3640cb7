package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Balance
		want    Balance
		wantErr bool
	}{
		{"zero plus zero", 0, 0, 0, false},
		{"ordinary sum", 100, 200, 300, false},
		{"max minus one plus one", math.MaxInt64 - 1, 1, math.MaxInt64, false},
		{"overflow at max", math.MaxInt64, 1, 0, true},
		{"negative operands", -100, -200, -300, false},
		{"min plus negative one overflows", math.MinInt64, -1, 0, true},
		{"mixed signs never overflow", math.MaxInt64, math.MinInt64, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkedAdd(tt.a, tt.b)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBalanceWouldOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckedSub(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Balance
		want    Balance
		wantErr bool
	}{
		{"zero minus zero", 0, 0, 0, false},
		{"ordinary difference", 300, 100, 200, false},
		{"result goes negative, no overflow", 0, 1, -1, false},
		{"min minus one overflows", math.MinInt64, 1, 0, true},
		{"max minus negative min overflows", math.MaxInt64, math.MinInt64, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkedSub(tt.a, tt.b)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBalanceWouldOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountToBalance(t *testing.T) {
	t.Run("admissible range converts exactly", func(t *testing.T) {
		got, err := amountToBalance(0)
		require.NoError(t, err)
		assert.Equal(t, Balance(0), got)

		got, err = amountToBalance(math.MaxInt64)
		require.NoError(t, err)
		assert.Equal(t, Balance(math.MaxInt64), got)
	})

	t.Run("top bit set is too large", func(t *testing.T) {
		_, err := amountToBalance(uint64(math.MaxInt64) + 1)
		require.ErrorIs(t, err, ErrAmountTooLarge)

		_, err = amountToBalance(math.MaxUint64)
		require.ErrorIs(t, err, ErrAmountTooLarge)
	})
}
