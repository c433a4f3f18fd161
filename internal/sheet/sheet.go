// Package sheet loads spreadsheet CSV exports, groups rows into external
// transactions, and rewrites the category column from a mapping.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qifsync-dev/qifsync/internal/convert"
	"github.com/qifsync-dev/qifsync/internal/model"
)

// Required header columns.
const (
	ColGroupID   = "TxnID"
	ColDate      = "Date"
	ColAmount    = "Amount"
	ColItem      = "Item"
	ColCategory  = "Category"
	ColRationale = "Rationale"
)

var requiredCols = []string{ColGroupID, ColDate, ColAmount, ColItem, ColCategory, ColRationale}

// header maps column names to positions.
type header map[string]int

func indexHeader(record []string, required ...string) (header, error) {
	h := make(header, len(record))
	for i, name := range record {
		h[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("spreadsheet is missing columns: %s", strings.Join(missing, ", "))
	}
	return h, nil
}

// ReadRows reads a spreadsheet CSV. A missing required column is a hard
// error: no matching can be attempted without it. Rows whose amount or
// date cannot be normalized are skipped, so one bad row never blocks the
// rest of the dataset. Row indices count data rows in file order,
// including skipped ones, so they stay stable across reloads.
func ReadRows(r io.Reader) ([]model.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	h, err := indexHeader(records[0], requiredCols...)
	if err != nil {
		return nil, err
	}

	var rows []model.Row
	for i, rec := range records[1:] {
		get := func(col string) string {
			ci := h[col]
			if ci >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[ci])
		}

		amount, err := convert.ParseAmount(get(ColAmount))
		if err != nil {
			continue
		}
		date, err := convert.ParseDate(get(ColDate))
		if err != nil {
			continue
		}

		rows = append(rows, model.Row{
			Index:     i,
			GroupID:   get(ColGroupID),
			Date:      date,
			Amount:    amount,
			Item:      get(ColItem),
			Category:  get(ColCategory),
			Rationale: get(ColRationale),
		})
	}
	return rows, nil
}

// GroupRows aggregates rows sharing a group identifier into record
// groups: total is the decimal sum of row amounts, the representative
// date the earliest row date, rows ordered by original position. Groups
// are returned sorted by (date, id) for stable presentation.
func GroupRows(rows []model.Row) []model.RecordGroup {
	byID := make(map[string][]model.Row)
	var order []string
	for _, r := range rows {
		if _, ok := byID[r.GroupID]; !ok {
			order = append(order, r.GroupID)
		}
		byID[r.GroupID] = append(byID[r.GroupID], r)
	}

	groups := make([]model.RecordGroup, 0, len(order))
	for _, id := range order {
		items := byID[id]
		sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })

		total := decimal.Zero
		first := items[0].Date
		for _, r := range items {
			total = total.Add(r.Amount)
			if r.Date.Before(first) {
				first = r.Date
			}
		}
		groups = append(groups, model.RecordGroup{
			ID:    id,
			Date:  first,
			Total: total,
			Rows:  items,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].Date.Equal(groups[j].Date) {
			return groups[i].Date.Before(groups[j].Date)
		}
		return groups[i].ID < groups[j].ID
	})
	return groups
}

// Categories returns the unique category names in the rows,
// case-insensitive dedupe keeping first-seen casing, sorted
// case-insensitively.
func Categories(rows []model.Row) []string {
	firstByLower := make(map[string]string)
	for _, r := range rows {
		s := strings.TrimSpace(r.Category)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := firstByLower[key]; !ok {
			firstByLower[key] = s
		}
	}
	out := make([]string, 0, len(firstByLower))
	for _, v := range firstByLower {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// RewriteCategories copies a spreadsheet CSV from r to w, replacing each
// value in the category column with its mapped canonical name. Unmapped
// values and every other column pass through untouched. A missing
// category column is a hard error.
func RewriteCategories(r io.Reader, w io.Writer, mapping map[string]string) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("reading spreadsheet CSV: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("spreadsheet is empty")
	}

	h, err := indexHeader(records[0], ColCategory)
	if err != nil {
		return err
	}
	ci := h[ColCategory]

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(records[0]); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range records[1:] {
		if ci < len(rec) {
			if canonical, ok := mapping[strings.TrimSpace(rec[ci])]; ok {
				rec[ci] = canonical
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
