// Package match reconciles ledger transactions with spreadsheet record
// groups, and free-text category labels between the two sources. Both
// engines perform deterministic greedy one-to-one assignment over sorted
// candidates, support manual override and unmatch, and can explain why a
// given pair is not matched.
//
// Sessions are plain mutable state with no internal locking; callers
// must not mutate one session from multiple goroutines.
package match

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qifsync-dev/qifsync/internal/model"
)

// WholeTxn is the SplitIndex value for a key that refers to the whole
// transaction rather than an individual split.
const WholeTxn = -1

// ItemKey identifies a ledger transaction (or, in the degenerate
// per-split case, one of its splits) for the lifetime of a session.
// Comparable, used as a map key.
type ItemKey struct {
	TxnIndex   int
	SplitIndex int // WholeTxn for transaction-level keys
}

// Key returns a transaction-level key for index ti.
func Key(ti int) ItemKey {
	return ItemKey{TxnIndex: ti, SplitIndex: WholeTxn}
}

// IsSplit reports whether the key refers to an individual split.
func (k ItemKey) IsSplit() bool {
	return k.SplitIndex != WholeTxn
}

// TxnView is the transaction-level projection used for matching. Whole
// transactions are matched, never individual splits: Amount is the sum of
// split amounts when splits exist. Views are built once per session and
// never mutated.
type TxnView struct {
	Key      ItemKey
	Date     time.Time
	Amount   decimal.Decimal
	Payee    string
	Memo     string
	Category string
}

// MakeViews builds one view per transaction, preserving input order so
// that view i carries Key(i). Transactions are taken as already
// normalized by the loader; a zero date would never fall inside any date
// window, so no record is skipped here.
func MakeViews(txns []*model.Transaction) []TxnView {
	views := make([]TxnView, 0, len(txns))
	for ti, t := range txns {
		views = append(views, TxnView{
			Key:      Key(ti),
			Date:     t.Date,
			Amount:   t.TotalAmount(),
			Payee:    t.Payee,
			Memo:     t.Memo,
			Category: t.Category,
		})
	}
	return views
}
