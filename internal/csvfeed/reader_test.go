package csvfeed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-engine/internal/domain/ledger"
)

func collectRows(t *testing.T, input string) ([]InputRow, []*ParseError) {
	t.Helper()
	var rows []InputRow
	var errs []*ParseError
	err := ReadRows(strings.NewReader(input),
		func(row InputRow) { rows = append(rows, row) },
		func(perr *ParseError) { errs = append(errs, perr) },
	)
	require.NoError(t, err)
	return rows, errs
}

func TestReadRowsParsesAllFiveKinds(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,1.0
withdrawal,1,2,0.5000
dispute,1,1,
resolve,1,1,
chargeback,1,1,
`
	rows, errs := collectRows(t, input)
	require.Empty(t, errs)
	require.Len(t, rows, 5)

	assert.Equal(t, InputRow{Kind: RowDeposit, Client: 1, Tx: 1, Amount: 10000}, rows[0])
	assert.Equal(t, InputRow{Kind: RowWithdrawal, Client: 1, Tx: 2, Amount: 5000}, rows[1])
	assert.Equal(t, InputRow{Kind: RowDispute, Client: 1, Tx: 1}, rows[2])
	assert.Equal(t, InputRow{Kind: RowResolve, Client: 1, Tx: 1}, rows[3])
	assert.Equal(t, InputRow{Kind: RowChargeback, Client: 1, Tx: 1}, rows[4])
}

func TestReadRowsTrimsWhitespaceAroundFields(t *testing.T) {
	input := "type,client,tx,amount\n  deposit ,  1 ,  7 ,  3.2500  \n"
	rows, errs := collectRows(t, input)
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, InputRow{Kind: RowDeposit, Client: 1, Tx: 7, Amount: 32500}, rows[0])
}

func TestReadRowsTruncatesExtraFractionalDigits(t *testing.T) {
	rows, errs := collectRows(t, "type,client,tx,amount\ndeposit,1,1,1.23456\n")
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, ledger.Amount(12345), rows[0].Amount)
}

func TestReadRowsSkipsMalformedRowsAndKeepsGoing(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,1.0
sidestep,1,2,1.0
deposit,1,3,
deposit,1,4,1.0
dispute,1,5,2.0
withdrawal,1,6,1.0
`
	rows, errs := collectRows(t, input)
	require.Len(t, errs, 3)
	require.Len(t, rows, 3)
	assert.Equal(t, uint32(1), rows[0].Tx)
	assert.Equal(t, uint32(4), rows[1].Tx)
	assert.Equal(t, uint32(6), rows[2].Tx)
	for _, e := range errs {
		assert.NotEmpty(t, e.Error())
	}
}

func TestReadRowsRejectsNonNumericIdentifiers(t *testing.T) {
	_, errs := collectRows(t, "type,client,tx,amount\ndeposit,abc,1,1.0\ndeposit,1,xyz,1.0\n")
	require.Len(t, errs, 2)
}

func TestReadRowsRejectsNegativeAmount(t *testing.T) {
	_, errs := collectRows(t, "type,client,tx,amount\ndeposit,1,1,-1.0\n")
	require.Len(t, errs, 1)
}

func TestReadRowsEmptyInputYieldsNothing(t *testing.T) {
	rows, errs := collectRows(t, "")
	assert.Empty(t, rows)
	assert.Empty(t, errs)
}

func TestReadRowsHeaderOnlyYieldsNothing(t *testing.T) {
	rows, errs := collectRows(t, "type,client,tx,amount\n")
	assert.Empty(t, rows)
	assert.Empty(t, errs)
}
