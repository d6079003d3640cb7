package kafka

// Topic names for published ledger events.
const (
	TopicTransactionsAccepted = "ledger.transactions.accepted"
	TopicTransactionsRejected = "ledger.transactions.rejected"
	TopicAccountsLocked       = "ledger.accounts.locked"
)
