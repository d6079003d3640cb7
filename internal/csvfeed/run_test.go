package csvfeed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-engine/internal/domain/ledger"
	"ledger-engine/internal/logging"
)

func TestApplyDispatchesEveryRowKind(t *testing.T) {
	e := ledger.Init()
	require.NoError(t, Apply(e, InputRow{Kind: RowDeposit, Client: 1, Tx: 1, Amount: 50000}))
	require.NoError(t, Apply(e, InputRow{Kind: RowWithdrawal, Client: 1, Tx: 2, Amount: 10000}))
	require.NoError(t, Apply(e, InputRow{Kind: RowDispute, Client: 1, Tx: 1}))
	require.NoError(t, Apply(e, InputRow{Kind: RowResolve, Client: 1, Tx: 1}))

	acc, ok := e.GetAccount(1)
	require.True(t, ok)
	assert.Equal(t, ledger.Balance(40000), acc.AvailableBalance())

	require.NoError(t, Apply(e, InputRow{Kind: RowDispute, Client: 1, Tx: 1}))
	require.NoError(t, Apply(e, InputRow{Kind: RowChargeback, Client: 1, Tx: 1}))
	acc, _ = e.GetAccount(1)
	assert.True(t, acc.IsLocked())
}

func TestRunReplaysCsvAndSkipsRejectedRows(t *testing.T) {
	e := ledger.Init()
	logger := logging.New(logging.ERROR, "text", nil)

	input := `type,client,tx,amount
deposit,1,1,1.0
withdrawal,1,2,5.0
deposit,1,3,2.0
`
	require.NoError(t, Run(strings.NewReader(input), e, logger))

	acc, ok := e.GetAccount(1)
	require.True(t, ok)
	assert.Equal(t, ledger.Balance(30000), acc.AvailableBalance())
}
