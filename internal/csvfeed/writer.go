package csvfeed

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"ledger-engine/internal/domain/ledger"
)

// CollectRows snapshots every account in e into OutputRows sorted ascending
// by client, for deterministic output.
func CollectRows(e *ledger.Engine) []OutputRow {
	var rows []OutputRow
	e.Accounts(func(id ledger.ClientID, acc ledger.Account) bool {
		rows = append(rows, OutputRow{
			Client:    id,
			Available: acc.AvailableBalance(),
			Held:      acc.HeldBalance(),
			Total:     acc.TotalBalance(),
			Locked:    acc.IsLocked(),
		})
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].Client < rows[j].Client })
	return rows
}

// WriteRows renders rows as a CSV with columns
// client,available,held,total,locked. Balances are formatted as decimal
// strings with exactly four fractional digits.
func WriteRows(w io.Writer, rows []OutputRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.Client), 10),
			formatBalance(row.Available),
			formatBalance(row.Held),
			formatBalance(row.Total),
			strconv.FormatBool(row.Locked),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

func formatBalance(b ledger.Balance) string {
	return decimal.New(int64(b), -subUnitScale).StringFixed(subUnitScale)
}
