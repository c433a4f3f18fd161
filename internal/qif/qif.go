// Package qif reads and writes Quicken Interchange Format ledger files.
// QIF is a line-tagged format: each line starts with a one-letter field
// code and records end with "^". Only transaction sections are decoded;
// list sections (categories, payees, ...) are skipped.
package qif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/qifsync-dev/qifsync/internal/convert"
	"github.com/qifsync-dev/qifsync/internal/model"
)

const (
	sectionPrefix = "!Type:"
	accountHeader = "!Account"
	recordEnd     = "^"
)

// Transaction section types. Anything else under !Type: (Cat, Class,
// Memorized, ...) is a list section and is skipped.
var txnSections = map[string]bool{
	"Bank":  true,
	"Cash":  true,
	"CCard": true,
	"Invst": true,
	"Oth A": true,
	"Oth L": true,
}

// rawTxn accumulates one record's lines before normalization.
type rawTxn struct {
	date     string
	amount   string
	checkNum string
	cleared  string
	payee    string
	memo     string
	category string
	address  []string
	splits   []rawSplit
	line     int
}

type rawSplit struct {
	category string
	memo     string
	amount   string
}

// Parse reads a QIF stream into transactions. Records whose date or
// amount cannot be normalized are skipped rather than failing the parse:
// partial data must not block matching the rest of the file.
func Parse(r io.Reader) ([]*model.Transaction, error) {
	var (
		txns        []*model.Transaction
		cur         *rawTxn
		curType     string
		curAccount  string
		inTxns      bool
		inAcctBlock bool
		acctName    string
	)

	finish := func() {
		if cur == nil {
			return
		}
		if t, ok := normalize(cur, curAccount, curType); ok {
			txns = append(txns, t)
		}
		cur = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, sectionPrefix) {
			finish()
			curType = strings.TrimSpace(line[len(sectionPrefix):])
			inTxns = txnSections[curType]
			inAcctBlock = false
			continue
		}
		if strings.HasPrefix(line, accountHeader) {
			finish()
			inAcctBlock = true
			acctName = ""
			continue
		}

		if inAcctBlock {
			if line == recordEnd {
				curAccount = acctName
				inAcctBlock = false
				continue
			}
			if strings.HasPrefix(line, "N") {
				acctName = strings.TrimSpace(line[1:])
			}
			continue
		}
		if !inTxns {
			continue
		}

		if line == recordEnd {
			finish()
			continue
		}

		if cur == nil {
			cur = &rawTxn{line: lineNo}
		}
		code, rest := line[:1], line[1:]
		switch code {
		case "D":
			cur.date = rest
		case "T", "U":
			cur.amount = rest
		case "N":
			cur.checkNum = rest
		case "C":
			cur.cleared = rest
		case "P":
			cur.payee = rest
		case "M":
			cur.memo = rest
		case "L":
			cur.category = rest
		case "A":
			cur.address = append(cur.address, rest)
		case "S":
			cur.splits = append(cur.splits, rawSplit{category: rest})
		case "E":
			if len(cur.splits) > 0 {
				cur.splits[len(cur.splits)-1].memo = rest
			}
		case "$":
			if len(cur.splits) > 0 {
				cur.splits[len(cur.splits)-1].amount = rest
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading QIF: %w", err)
	}
	finish()
	return txns, nil
}

// normalize converts an accumulated record into a Transaction, reporting
// false when the record is unusable for matching.
func normalize(raw *rawTxn, account, section string) (*model.Transaction, bool) {
	date, err := convert.ParseDate(raw.date)
	if err != nil {
		return nil, false
	}

	t := &model.Transaction{
		Account:  account,
		Type:     section,
		Date:     date,
		CheckNum: raw.checkNum,
		Cleared:  model.ClearedStatus(raw.cleared),
		Payee:    raw.payee,
		Memo:     raw.memo,
		Address:  strings.Join(raw.address, "\n"),
	}
	t.Category, t.Tag = splitCategoryTag(raw.category)

	for _, s := range raw.splits {
		amt, err := convert.ParseAmount(s.amount)
		if err != nil {
			continue
		}
		cat, tag := splitCategoryTag(s.category)
		t.Splits = append(t.Splits, model.SubEntry{
			Category: cat,
			Memo:     s.memo,
			Amount:   amt,
			Tag:      tag,
		})
	}

	amt, err := convert.ParseAmount(raw.amount)
	switch {
	case err == nil:
		t.Amount = amt
	case len(t.Splits) > 0:
		t.Amount = t.TotalAmount()
	default:
		return nil, false
	}
	return t, true
}

// splitCategoryTag splits a "Category/Tag" L line. Transfer categories
// like "[Savings]" never carry tags and pass through verbatim.
func splitCategoryTag(s string) (category, tag string) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		return s, ""
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
