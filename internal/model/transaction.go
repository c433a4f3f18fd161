package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClearedStatus is the reconciliation flag on a QIF transaction.
type ClearedStatus string

const (
	NotCleared ClearedStatus = ""
	Cleared    ClearedStatus = "*"
	Reconciled ClearedStatus = "X"
)

// SubEntry is one split line of a ledger transaction. Split amounts sum
// to the transaction amount.
type SubEntry struct {
	Category string
	Memo     string
	Amount   decimal.Decimal
	Tag      string
}

// Transaction represents a single ledger (QIF) transaction. Only the
// fields the matching core and the QIF codec read or write are modeled;
// a transaction without splits is treated as one virtual sub-entry equal
// to the whole amount.
type Transaction struct {
	Account  string
	Type     string // QIF section type (Bank, Cash, CCard, ...)
	Date     time.Time
	CheckNum string
	Amount   decimal.Decimal
	Cleared  ClearedStatus
	Payee    string
	Memo     string
	Category string
	Tag      string
	Address  string
	Splits   []SubEntry
}

// TotalAmount returns the sum of split amounts when splits exist,
// otherwise the transaction's own amount.
func (t *Transaction) TotalAmount() decimal.Decimal {
	if len(t.Splits) == 0 {
		return t.Amount
	}
	total := decimal.Zero
	for _, s := range t.Splits {
		total = total.Add(s.Amount)
	}
	return total
}
