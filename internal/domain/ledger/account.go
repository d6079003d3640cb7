package ledger

// Account holds one client's balances and lock state. Held is derived
// (total - available) and is never stored.
type Account struct {
	available Balance
	total     Balance
	locked    bool
}

// newAccount constructs a fresh account: zero balances, unlocked.
func newAccount() Account {
	return Account{}
}

// AvailableBalance returns the funds free to withdraw.
func (a Account) AvailableBalance() Balance { return a.available }

// TotalBalance returns the funds owned regardless of hold state.
func (a Account) TotalBalance() Balance { return a.total }

// HeldBalance returns total - available. The engine guarantees this never
// overflows given its invariants; if it somehow does, that is a corrupted
// invariant rather than a recoverable error.
func (a Account) HeldBalance() Balance { return mustCheckedSub(a.total, a.available) }

// IsLocked reports whether this account is in its terminal, locked state.
func (a Account) IsLocked() bool { return a.locked }

// tryDeposit credits amount to both total and available. All-or-nothing: if
// the fallible add overflows, no field is changed.
func (a *Account) tryDeposit(amount Balance) error {
	total, err := checkedAdd(a.total, amount)
	if err != nil {
		return err
	}
	// The engine guarantees available never exceeds total, so if total just
	// accepted this amount, available must too.
	a.available = mustCheckedAdd(a.available, amount)
	a.total = total
	return nil
}

// tryWithdraw debits amount from both available and total. Requires
// amount <= available.
func (a *Account) tryWithdraw(amount Balance) error {
	if amount > a.available {
		return ErrInsufficientFunds
	}
	a.available = mustCheckedSub(a.available, amount)
	a.total = mustCheckedSub(a.total, amount)
	return nil
}

// tryDispute opens a dispute against tx, which must be Accepted. A disputed
// deposit pulls its amount out of available (it may go negative); a disputed
// withdrawal changes no balance until it is resolved or charged back.
func (a *Account) tryDispute(tx *Transaction) error {
	if tx.Kind == Deposit {
		available, err := checkedSub(a.available, tx.Amount)
		if err != nil {
			return err
		}
		a.available = available
	}
	tx.State = Disputed
	return nil
}

// tryResolve closes a dispute in the client's favor, restoring a disputed
// deposit's amount to available. tx must be Disputed.
func (a *Account) tryResolve(tx *Transaction) error {
	if tx.Kind == Deposit {
		available, err := checkedAdd(a.available, tx.Amount)
		if err != nil {
			return err
		}
		a.available = available
	}
	tx.State = Accepted
	return nil
}

// tryChargeback reverses tx permanently and locks the account. tx must be
// Disputed. A charged-back deposit is removed from total (it was already
// removed from available by the dispute); a charged-back withdrawal is
// returned to both available and total.
func (a *Account) tryChargeback(tx *Transaction) error {
	switch tx.Kind {
	case Deposit:
		total, err := checkedSub(a.total, tx.Amount)
		if err != nil {
			return err
		}
		a.total = total
	case Withdrawal:
		if err := a.tryDeposit(tx.Amount); err != nil {
			return err
		}
	}
	tx.State = Reversed
	a.locked = true
	return nil
}
