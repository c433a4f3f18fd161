package qif

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qifsync-dev/qifsync/internal/model"
)

const sampleQIF = `!Type:Bank
D8/1'25
T-50.00
PWhole Foods
MWeekly shop
SGroceries
EMilk
$-30.00
SHousehold
ESoap
$-20.00
^
D8/3'25
T-12.34
PBlue Bottle
LDining Out
^
`

func TestParse(t *testing.T) {
	txns, err := Parse(strings.NewReader(sampleQIF))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	first := txns[0]
	assert.Equal(t, "Bank", first.Type)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Whole Foods", first.Payee)
	assert.Equal(t, "Weekly shop", first.Memo)
	require.Len(t, first.Splits, 2)
	assert.Equal(t, "Groceries", first.Splits[0].Category)
	assert.Equal(t, "Milk", first.Splits[0].Memo)
	assert.True(t, first.Splits[0].Amount.Equal(dec("-30.00")))
	assert.True(t, first.TotalAmount().Equal(dec("-50.00")))

	second := txns[1]
	assert.Equal(t, "Dining Out", second.Category)
	assert.Empty(t, second.Splits)
	assert.True(t, second.Amount.Equal(dec("-12.34")))
}

func TestParse_AccountBlockAndSections(t *testing.T) {
	in := `!Account
NChecking
TBank
^
!Type:Bank
D1/2'25
T-5.00
PCoffee
^
!Type:Cat
NGroceries
^
!Type:CCard
D1/3'25
T-7.00
PLunch
LDining Out/Work
^
`
	txns, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 2, "category list section must not leak transactions")
	assert.Equal(t, "Checking", txns[0].Account)
	assert.Equal(t, "CCard", txns[1].Type)
	assert.Equal(t, "Dining Out", txns[1].Category)
	assert.Equal(t, "Work", txns[1].Tag)
}

func TestParse_SkipsMalformedRecords(t *testing.T) {
	in := `!Type:Bank
Dnot-a-date
T-5.00
PBroken date
^
D1/2'25
Tgarbage
PBroken amount
^
D1/3'25
T-7.00
PGood
^
`
	txns, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Good", txns[0].Payee)
}

func TestParse_TransferCategory(t *testing.T) {
	in := `!Type:Bank
D1/2'25
T-100.00
PTransfer
L[Savings]
^
`
	txns, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "[Savings]", txns[0].Category)
	assert.Empty(t, txns[0].Tag)
}

func TestWriteRoundTrip(t *testing.T) {
	txns, err := Parse(strings.NewReader(sampleQIF))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, txns))

	out := buf.String()
	assert.Contains(t, out, "!Type:Bank")
	assert.Contains(t, out, "D8/1'25")
	assert.Contains(t, out, "L--Split--")
	assert.Contains(t, out, "SGroceries")
	assert.Contains(t, out, "$-30")

	again, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, txns[0].Payee, again[0].Payee)
	assert.True(t, again[0].TotalAmount().Equal(txns[0].TotalAmount()))
	assert.Equal(t, txns[1].Category, again[1].Category)
}

func TestCategories(t *testing.T) {
	txns := []*model.Transaction{
		{Category: "Groceries"},
		{Category: "groceries"}, // dedupes case-insensitively, first casing wins
		{Category: "[Savings]"}, // transfers excluded
		{Category: ""},
		{Splits: []model.SubEntry{
			{Category: "Dining Out"},
			{Category: "Auto"},
		}},
	}
	assert.Equal(t, []string{"Auto", "Dining Out", "Groceries"}, Categories(txns))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
