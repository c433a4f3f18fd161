package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qifsync-dev/qifsync/internal/model"
)

// Session holds ledger transactions plus spreadsheet record groups and
// maintains a one-to-one mapping between them. Matching happens at the
// transaction level: a transaction's splits never match individually.
type Session struct {
	txns   []*model.Transaction
	views  []TxnView
	groups []model.RecordGroup

	// forward and reverse are always mutual inverses.
	forward map[ItemKey]int // view key -> group index
	reverse map[int]ItemKey // group index -> view key
}

// Pair is one matched (ledger view, record group) association with its
// recomputed date cost.
type Pair struct {
	View  TxnView
	Group model.RecordGroup
	Cost  int
}

// NewSession builds a session over txns and groups. The transaction slice
// is retained: ApplyUpdates mutates its elements in place.
func NewSession(txns []*model.Transaction, groups []model.RecordGroup) *Session {
	return &Session{
		txns:    txns,
		views:   MakeViews(txns),
		groups:  groups,
		forward: make(map[ItemKey]int),
		reverse: make(map[int]ItemKey),
	}
}

// Views returns the session's transaction views in ledger order.
func (s *Session) Views() []TxnView {
	return s.views
}

// Groups returns the session's record groups.
func (s *Session) Groups() []model.RecordGroup {
	return s.groups
}

type candidate struct {
	cost int
	ti   int
	gi   int
}

// AutoMatch computes a maximal one-to-one assignment. Candidates are
// (date cost, view index, group index) triples for every amount-equal
// pair within the date window, sorted ascending by exactly that triple:
// the tie-break on raw indices is intentional, documented behavior — it
// keeps repeated runs over the same input byte-identical.
//
// Existing mappings are discarded first, so AutoMatch on a fresh and on a
// reused session give the same result.
func (s *Session) AutoMatch() {
	s.forward = make(map[ItemKey]int)
	s.reverse = make(map[int]ItemKey)

	// Bucket groups by total so each view only scores amount-equal groups.
	byTotal := make(map[string][]int)
	for gi, g := range s.groups {
		k := amountKey(g.Total)
		byTotal[k] = append(byTotal[k], gi)
	}

	var candidates []candidate
	for ti, v := range s.views {
		for _, gi := range byTotal[amountKey(v.Amount)] {
			cost, ok := DateCost(v.Date, s.groups[gi].Date)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{cost: cost, ti: ti, gi: gi})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		if a.ti != b.ti {
			return a.ti < b.ti
		}
		return a.gi < b.gi
	})

	usedTxn := make(map[int]bool)
	usedGrp := make(map[int]bool)
	for _, c := range candidates {
		if usedTxn[c.ti] || usedGrp[c.gi] {
			continue
		}
		key := s.views[c.ti].Key
		s.forward[key] = c.gi
		s.reverse[c.gi] = key
		usedTxn[c.ti] = true
		usedGrp[c.gi] = true
	}
}

// MatchedPairs returns the current matches in ledger-view order.
func (s *Session) MatchedPairs() []Pair {
	var out []Pair
	for _, v := range s.views {
		gi, ok := s.forward[v.Key]
		if !ok {
			continue
		}
		g := s.groups[gi]
		cost, _ := DateCost(v.Date, g.Date)
		out = append(out, Pair{View: v, Group: g, Cost: cost})
	}
	return out
}

// UnmatchedLedger returns the views with no current match, in ledger order.
func (s *Session) UnmatchedLedger() []TxnView {
	var out []TxnView
	for _, v := range s.views {
		if _, ok := s.forward[v.Key]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// UnmatchedGroups returns the groups with no current match, in group order.
func (s *Session) UnmatchedGroups() []model.RecordGroup {
	var out []model.RecordGroup
	for gi, g := range s.groups {
		if _, ok := s.reverse[gi]; !ok {
			out = append(out, g)
		}
	}
	return out
}

// ManualMatch forces a match between the view identified by key and the
// group at groupIndex. Validation failures are reported, not returned as
// errors: operators probe many candidate pairs interactively. On success
// any mapping touching either side is removed first, keeping the
// one-to-one invariant; on failure nothing is mutated.
func (s *Session) ManualMatch(key ItemKey, groupIndex int) (bool, string) {
	v, ok := s.viewByKey(key)
	if !ok {
		return false, "Ledger item key not found."
	}
	if groupIndex < 0 || groupIndex >= len(s.groups) {
		return false, "Group index out of range."
	}
	g := s.groups[groupIndex]

	if !v.Amount.Equal(g.Total) {
		return false, fmt.Sprintf("Total amount differs (ledger %s vs group %s).",
			v.Amount, g.Total)
	}
	if _, ok := DateCost(v.Date, g.Date); !ok {
		return false, fmt.Sprintf("Date outside ±%d days (ledger %s vs group %s).",
			DateWindowDays, v.Date.Format("2006-01-02"), g.Date.Format("2006-01-02"))
	}

	s.unlinkKey(key)
	s.unlinkGroup(groupIndex)
	s.forward[key] = groupIndex
	s.reverse[groupIndex] = key
	return true, "Matched."
}

// ManualUnmatch removes an existing mapping located by either side and
// reports whether a removal occurred. Passing nil for both is a no-op.
func (s *Session) ManualUnmatch(key *ItemKey, groupIndex *int) bool {
	if key != nil {
		return s.unlinkKey(*key)
	}
	if groupIndex != nil {
		return s.unlinkGroup(*groupIndex)
	}
	return false
}

// NonmatchReason explains why v and g are not currently matched to each
// other, checked in priority order: amount mismatch, date outside the
// window, either side already matched elsewhere, a closer date was
// preferred, otherwise the deterministic tie-break picked another
// candidate.
func (s *Session) NonmatchReason(v TxnView, g model.RecordGroup) string {
	if !v.Amount.Equal(g.Total) {
		return fmt.Sprintf("Total amount differs (ledger %s vs group %s).",
			v.Amount, g.Total)
	}
	cost, ok := DateCost(v.Date, g.Date)
	if !ok {
		return fmt.Sprintf("Date outside ±%d days (ledger %s vs group %s).",
			DateWindowDays, v.Date.Format("2006-01-02"), g.Date.Format("2006-01-02"))
	}

	if gi := s.groupIndex(g); gi >= 0 {
		if mapped, ok := s.forward[v.Key]; ok && mapped != gi {
			return "Ledger transaction is already matched."
		}
		if mappedKey, ok := s.reverse[gi]; ok && mappedKey != v.Key {
			return "Group is already matched."
		}
	}

	if cost > 0 {
		return fmt.Sprintf("Auto-match preferred a closer date (day diff = %d).", cost)
	}
	return "Auto-match selected another candidate."
}

// ApplyUpdates rewrites each matched transaction's splits from its
// group's rows (category from the row category, memo from the row item,
// amount from the row amount) and blanks the top-level category, since
// the transaction now carries splits. Mutates the session's transactions
// in place; performs no I/O.
func (s *Session) ApplyUpdates() {
	for _, p := range s.MatchedPairs() {
		txn := s.txns[p.View.Key.TxnIndex]
		splits := make([]model.SubEntry, 0, len(p.Group.Rows))
		for _, r := range p.Group.Rows {
			splits = append(splits, model.SubEntry{
				Category: r.Category,
				Memo:     r.Item,
				Amount:   r.Amount,
			})
		}
		txn.Splits = splits
		txn.Category = ""
	}
}

// amountKey canonicalizes a decimal for map bucketing: String keeps the
// stored exponent, so 50 and 50.00 would otherwise land in different
// buckets despite being equal.
func amountKey(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func (s *Session) viewByKey(key ItemKey) (TxnView, bool) {
	for _, v := range s.views {
		if v.Key == key {
			return v, true
		}
	}
	return TxnView{}, false
}

func (s *Session) groupIndex(g model.RecordGroup) int {
	for gi, gg := range s.groups {
		if gg.ID == g.ID && gg.Date.Equal(g.Date) && gg.Total.Equal(g.Total) {
			return gi
		}
	}
	return -1
}

func (s *Session) unlinkKey(key ItemKey) bool {
	gi, ok := s.forward[key]
	if !ok {
		return false
	}
	delete(s.forward, key)
	delete(s.reverse, gi)
	return true
}

func (s *Session) unlinkGroup(gi int) bool {
	key, ok := s.reverse[gi]
	if !ok {
		return false
	}
	delete(s.reverse, gi)
	delete(s.forward, key)
	return true
}
