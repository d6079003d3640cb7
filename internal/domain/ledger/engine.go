// Package ledger implements the transaction engine: the data model for
// client accounts and historical transactions, the three-state dispute
// machine, the overflow-safe fixed-point balance arithmetic, and the
// invariants connecting them.
//
// The engine is synchronous and single-threaded: every exported method must
// be called under external mutual exclusion if shared across goroutines
// (see the ingest package for one conforming pattern). No method here
// blocks, suspends, or performs I/O.
package ledger

// Option configures an Engine at construction time.
type Option func(*engineConfig)

type engineConfig struct {
	dense                bool
	expectedTransactions int
}

// WithDenseStorage selects the dense, slice-backed storage layout instead of
// the default sparse, map-backed one. expectedTransactions sizes the initial
// transaction slice; it grows automatically if exceeded.
func WithDenseStorage(expectedTransactions int) Option {
	return func(c *engineConfig) {
		c.dense = true
		c.expectedTransactions = expectedTransactions
	}
}

// Engine is a transaction engine: it owns the account table and the
// transaction history, and validates, routes, and commits every operation
// against them.
type Engine struct {
	store store
}

// Init constructs a new transaction engine with no history of client
// accounts or transactions.
func Init(opts ...Option) *Engine {
	cfg := engineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	var s store
	if cfg.dense {
		s = newDenseStore(cfg.expectedTransactions)
	} else {
		s = newSparseStore()
	}
	return &Engine{store: s}
}

// GetAccount returns the account for client, or false if no account has
// been created for it yet. It never creates an account.
func (e *Engine) GetAccount(client ClientID) (Account, bool) {
	acc, ok := e.store.getAccount(client)
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// Accounts calls yield once per existing account, in arbitrary order, until
// yield returns false or every account has been visited. It is a one-pass,
// non-restartable view, consistent with the spec's "unordered, finite,
// non-restartable is acceptable" allowance.
func (e *Engine) Accounts(yield func(ClientID, Account) bool) {
	e.store.rangeAccounts(yield)
}

// Deposit attempts to process a single deposit transaction.
func (e *Engine) Deposit(client ClientID, tx TransactionID, amount Amount) error {
	balance, err := amountToBalance(amount)
	if err != nil {
		return err
	}
	return e.processRegular(client, tx, Deposit, balance)
}

// Withdrawal attempts to process a single withdrawal transaction.
func (e *Engine) Withdrawal(client ClientID, tx TransactionID, amount Amount) error {
	balance, err := amountToBalance(amount)
	if err != nil {
		return err
	}
	return e.processRegular(client, tx, Withdrawal, balance)
}

// Dispute attempts to process a single dispute transaction.
func (e *Engine) Dispute(client ClientID, tx TransactionID) error {
	return e.processSpecial(client, tx, specialDispute)
}

// Resolve attempts to process a single resolve transaction.
func (e *Engine) Resolve(client ClientID, tx TransactionID) error {
	return e.processSpecial(client, tx, specialResolve)
}

// Chargeback attempts to process a single chargeback transaction.
func (e *Engine) Chargeback(client ClientID, tx TransactionID) error {
	return e.processSpecial(client, tx, specialChargeback)
}

func (e *Engine) processRegular(client ClientID, id TransactionID, kind Kind, amount Balance) error {
	// A transaction ID collides with a previously *accepted* transaction,
	// even if the colliding attempt itself later failed: a failed regular
	// transaction was never recorded, so its ID slot stays free.
	if _, exists := e.store.getTransaction(id); exists {
		return ErrAlreadyProcessed
	}

	// A client's first-ever operation cannot be a withdrawal.
	if kind == Withdrawal {
		if _, exists := e.store.getAccount(client); !exists {
			return ErrInvalidFirstTransaction
		}
	}

	account, _ := e.store.getOrCreateAccount(client)
	if account.IsLocked() {
		return ErrClientAccountLocked
	}

	switch kind {
	case Deposit:
		if err := account.tryDeposit(amount); err != nil {
			return err
		}
	case Withdrawal:
		if err := account.tryWithdraw(amount); err != nil {
			return err
		}
	}

	// Only a successful regular transaction occupies its ID slot.
	e.store.putTransaction(id, Transaction{
		Client: client,
		Kind:   kind,
		Amount: amount,
		State:  Accepted,
	})
	return nil
}

func (e *Engine) processSpecial(client ClientID, id TransactionID, kind specialKind) error {
	tx, exists := e.store.getTransaction(id)
	if !exists {
		// A regular transaction that failed was never recorded, so disputing
		// it yields this generic error, not a more specific one.
		return ErrUnknownTransaction
	}
	if tx.Client != client {
		return ErrWrongClient
	}

	account, _ := e.store.getOrCreateAccount(client)
	if account.IsLocked() {
		return ErrClientAccountLocked
	}

	switch kind {
	case specialDispute:
		switch tx.State {
		case Accepted:
			return account.tryDispute(tx)
		case Disputed:
			return ErrAlreadyDisputed
		case Reversed:
			panic("ledger: invariant violated, reversed transaction's account was not locked")
		}
	case specialResolve:
		switch tx.State {
		case Accepted:
			return ErrNotDisputed
		case Disputed:
			return account.tryResolve(tx)
		case Reversed:
			panic("ledger: invariant violated, reversed transaction's account was not locked")
		}
	case specialChargeback:
		switch tx.State {
		case Accepted:
			return ErrNotDisputed
		case Disputed:
			return account.tryChargeback(tx)
		case Reversed:
			panic("ledger: invariant violated, reversed transaction's account was not locked")
		}
	}
	return nil
}
