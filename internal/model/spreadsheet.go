package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one spreadsheet line. Rows sharing a GroupID form one external
// transaction. Rows are immutable after load.
type Row struct {
	Index     int // 0-based position in the source file, after the header
	GroupID   string
	Date      time.Time
	Amount    decimal.Decimal
	Item      string
	Category  string
	Rationale string
}

// RecordGroup is one external transaction: all rows sharing a GroupID.
// Date is the earliest row date and Total the decimal sum of row amounts,
// both fixed at load time. Rows keep their original file order.
type RecordGroup struct {
	ID    string
	Date  time.Time
	Total decimal.Decimal
	Rows  []Row
}
