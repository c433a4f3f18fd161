package qif

import (
	"sort"
	"strings"

	"github.com/qifsync-dev/qifsync/internal/model"
)

// Categories collects the category names used by transactions and their
// splits: case-insensitive dedupe keeping the first-seen casing, blanks
// and transfer references dropped, sorted case-insensitively.
func Categories(txns []*model.Transaction) []string {
	firstByLower := make(map[string]string)
	var order []string

	add := func(cat string) {
		s := strings.TrimSpace(cat)
		if s == "" || strings.HasPrefix(s, "[") || s == "--Split--" {
			return
		}
		key := strings.ToLower(s)
		if _, ok := firstByLower[key]; !ok {
			firstByLower[key] = s
			order = append(order, key)
		}
	}

	for _, t := range txns {
		add(t.Category)
		for _, s := range t.Splits {
			add(s.Category)
		}
	}

	out := make([]string, 0, len(order))
	for _, key := range order {
		out = append(out, firstByLower[key])
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
