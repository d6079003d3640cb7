package csvfeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// subUnitScale is the number of fractional decimal digits the engine's
// smallest sub-unit represents (four: 1.0000 becomes 10000).
const subUnitScale = 4

// ParseError describes a single row that could not be turned into an
// InputRow. The caller logs it and moves on; it never aborts a run.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadRows parses every data row of r, calling yield for each successfully
// parsed InputRow and onError for each row that failed to parse. It expects
// a header row (type,client,tx,amount) and trims leading/trailing
// whitespace from every field, mirroring a lenient CSV front-end.
func ReadRows(r io.Reader, yield func(InputRow), onError func(*ParseError)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("csvfeed: failed to read header: %w", err)
	}
	_ = header // header names aren't validated; position is what matters

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			line++
			onError(&ParseError{Line: line, Err: err})
			continue
		}
		if err != nil {
			return fmt.Errorf("csvfeed: failed to read row at line %d: %w", line+1, err)
		}
		line++

		row, perr := parseRow(record)
		if perr != nil {
			onError(&ParseError{Line: line, Err: perr})
			continue
		}
		yield(row)
	}
}

func parseRow(record []string) (InputRow, error) {
	if len(record) < 3 {
		return InputRow{}, fmt.Errorf("expected at least 3 fields, got %d", len(record))
	}

	kind, err := parseKind(record[0])
	if err != nil {
		return InputRow{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 16)
	if err != nil {
		return InputRow{}, fmt.Errorf("invalid client id %q: %w", record[1], err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return InputRow{}, fmt.Errorf("invalid transaction id %q: %w", record[2], err)
	}

	amountField := ""
	if len(record) >= 4 {
		amountField = strings.TrimSpace(record[3])
	}

	row := InputRow{
		Kind:   kind,
		Client: uint16(client),
		Tx:     uint32(tx),
	}

	switch kind {
	case RowDeposit, RowWithdrawal:
		if amountField == "" {
			return InputRow{}, fmt.Errorf("%v requires an amount", kind)
		}
		amount, err := parseAmount(amountField)
		if err != nil {
			return InputRow{}, err
		}
		row.Amount = amount
	case RowDispute, RowResolve, RowChargeback:
		if amountField != "" {
			return InputRow{}, fmt.Errorf("%v must not specify an amount", kind)
		}
	}

	return row, nil
}

func parseKind(s string) (RowKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return RowDeposit, nil
	case "withdrawal":
		return RowWithdrawal, nil
	case "dispute":
		return RowDispute, nil
	case "resolve":
		return RowResolve, nil
	case "chargeback":
		return RowChargeback, nil
	default:
		return 0, fmt.Errorf("unknown transaction type %q", s)
	}
}

// parseAmount converts a decimal string with up to four fractional digits
// into the engine's smallest sub-unit integer, truncating any extra
// precision rather than rounding.
func parseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q must not be negative", s)
	}
	scaled := d.Shift(subUnitScale).Truncate(0)
	if !scaled.BigInt().IsUint64() {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return scaled.BigInt().Uint64(), nil
}

func (k RowKind) String() string {
	switch k {
	case RowDeposit:
		return "deposit"
	case RowWithdrawal:
		return "withdrawal"
	case RowDispute:
		return "dispute"
	case RowResolve:
		return "resolve"
	case RowChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}
