package csvfeed

import (
	"fmt"
	"io"

	"ledger-engine/internal/domain/ledger"
	"ledger-engine/internal/logging"
)

// Apply dispatches a single InputRow against e, returning the engine's
// error, if any.
func Apply(e *ledger.Engine, row InputRow) error {
	switch row.Kind {
	case RowDeposit:
		return e.Deposit(row.Client, row.Tx, row.Amount)
	case RowWithdrawal:
		return e.Withdrawal(row.Client, row.Tx, row.Amount)
	case RowDispute:
		return e.Dispute(row.Client, row.Tx)
	case RowResolve:
		return e.Resolve(row.Client, row.Tx)
	case RowChargeback:
		return e.Chargeback(row.Client, row.Tx)
	default:
		return fmt.Errorf("csvfeed: unhandled row kind %v", row.Kind)
	}
}

// Run reads every row from r, applies each to e in order, and logs (never
// aborts on) parse failures and transaction errors. It returns an error only
// if the CSV stream itself could not be read.
func Run(r io.Reader, e *ledger.Engine, logger *logging.Logger) error {
	return ReadRows(r,
		func(row InputRow) {
			if err := Apply(e, row); err != nil {
				logger.Warn("transaction rejected", logging.Fields{
					"type":   row.Kind.String(),
					"client": row.Client,
					"tx":     row.Tx,
					"error":  err.Error(),
				})
			}
		},
		func(perr *ParseError) {
			logger.Warn("failed to parse row", logging.Fields{
				"line":  perr.Line,
				"error": perr.Err.Error(),
			})
		},
	)
}
