package qif

import (
	"fmt"
	"io"
	"strings"

	"github.com/qifsync-dev/qifsync/internal/model"
)

// Write serializes transactions back to QIF form. Section and account
// headers are emitted whenever they change from the previous record,
// dates use the classic m/d'yy encoding, and splits are emitted as
// S/E/$ line triples.
func Write(w io.Writer, txns []*model.Transaction) error {
	var curAccount, curType string
	for i, t := range txns {
		var lines []string

		if t.Account != "" && t.Account != curAccount {
			lines = append(lines, accountHeader, "N"+t.Account, recordEnd)
			curAccount = t.Account
		}
		section := t.Type
		if section == "" {
			section = "Bank"
		}
		if section != curType {
			lines = append(lines, sectionPrefix+section)
			curType = section
		}

		lines = append(lines, fmt.Sprintf("D%d/%d'%s", int(t.Date.Month()), t.Date.Day(), t.Date.Format("06")))
		if t.CheckNum != "" {
			lines = append(lines, "N"+t.CheckNum)
		}
		lines = append(lines, "T"+t.Amount.String(), "U"+t.Amount.String())
		if t.Cleared != model.NotCleared {
			lines = append(lines, "C"+string(t.Cleared))
		}
		if t.Payee != "" {
			lines = append(lines, "P"+t.Payee)
		}
		if t.Memo != "" {
			lines = append(lines, "M"+t.Memo)
		}
		lines = append(lines, "L"+categoryLine(t))
		for _, a := range strings.Split(t.Address, "\n") {
			if a != "" {
				lines = append(lines, "A"+a)
			}
		}
		for _, s := range t.Splits {
			lines = append(lines, "S"+joinCategoryTag(s.Category, s.Tag))
			if s.Memo != "" {
				lines = append(lines, "E"+s.Memo)
			}
			lines = append(lines, "$"+s.Amount.String())
		}
		lines = append(lines, recordEnd)

		if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
			return fmt.Errorf("writing transaction %d: %w", i, err)
		}
	}
	return nil
}

// categoryLine renders the L line: split transactions carry the
// "--Split--" marker, everything else its category (plus /tag).
func categoryLine(t *model.Transaction) string {
	if len(t.Splits) > 0 {
		return "--Split--"
	}
	return joinCategoryTag(t.Category, t.Tag)
}

func joinCategoryTag(category, tag string) string {
	if tag == "" {
		return category
	}
	return category + "/" + tag
}
