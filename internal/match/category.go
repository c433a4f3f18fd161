package match

import (
	"sort"
	"strings"
)

// CategorySession maps spreadsheet category labels onto canonical ledger
// category names. The mapping is label -> canonical and one-to-one per
// canonical: installing a canonical under a new label evicts the prior
// label.
type CategorySession struct {
	canonical []string // ledger-side names
	labels    []string // spreadsheet-side names
	mapping   map[string]string
}

// NewCategorySession creates a session over the two known name sets.
func NewCategorySession(canonical, labels []string) *CategorySession {
	return &CategorySession{
		canonical: append([]string(nil), canonical...),
		labels:    append([]string(nil), labels...),
		mapping:   make(map[string]string),
	}
}

// Canonical returns the ledger-side names.
func (s *CategorySession) Canonical() []string {
	return s.canonical
}

// Labels returns the spreadsheet-side names.
func (s *CategorySession) Labels() []string {
	return s.labels
}

// Mapping returns the current label -> canonical mapping. The returned
// map is a copy.
func (s *CategorySession) Mapping() map[string]string {
	out := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out
}

type categoryPair struct {
	Canonical string
	Label     string
	Score     float64
}

// AutoMatch greedily assigns labels to canonical names one-to-one:
// every pair scoring at least threshold is a candidate, highest ratio
// first, ties broken alphabetically (canonical then label,
// case-insensitive). Existing mappings are replaced.
func (s *CategorySession) AutoMatch(threshold float64) {
	s.mapping = make(map[string]string)
	for _, p := range fuzzyPairs(s.canonical, s.labels, threshold) {
		s.mapping[p.Label] = p.Canonical
	}
}

// fuzzyPairs computes the greedy one-to-one fuzzy assignment.
func fuzzyPairs(canonical, labels []string, threshold float64) []categoryPair {
	var candidates []categoryPair
	for _, c := range canonical {
		for _, l := range labels {
			if r := Ratio(c, l); r >= threshold {
				candidates = append(candidates, categoryPair{Canonical: c, Label: l, Score: r})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ac, bc := strings.ToLower(a.Canonical), strings.ToLower(b.Canonical)
		if ac != bc {
			return ac < bc
		}
		return strings.ToLower(a.Label) < strings.ToLower(b.Label)
	})

	usedC := make(map[string]bool)
	usedL := make(map[string]bool)
	var pairs []categoryPair
	for _, c := range candidates {
		if usedC[c.Canonical] || usedL[c.Label] {
			continue
		}
		pairs = append(pairs, c)
		usedC[c.Canonical] = true
		usedL[c.Label] = true
	}
	return pairs
}

// ManualMatch maps label to canonical. Both names must belong to their
// respective known sets; any other label currently mapped to the same
// canonical is evicted first.
func (s *CategorySession) ManualMatch(label, canonical string) (bool, string) {
	if !contains(s.labels, label) {
		return false, "Spreadsheet category not in list."
	}
	if !contains(s.canonical, canonical) {
		return false, "Ledger category not in list."
	}
	for l, c := range s.mapping {
		if c == canonical && l != label {
			delete(s.mapping, l)
		}
	}
	s.mapping[label] = canonical
	return true, "Matched."
}

// ManualUnmatch removes the mapping for label, reporting whether one
// existed.
func (s *CategorySession) ManualUnmatch(label string) bool {
	if _, ok := s.mapping[label]; !ok {
		return false
	}
	delete(s.mapping, label)
	return true
}

// Unmatched returns the canonical names and labels with no current
// mapping, each in its original list order.
func (s *CategorySession) Unmatched() (canonical, labels []string) {
	usedC := make(map[string]bool, len(s.mapping))
	for _, c := range s.mapping {
		usedC[c] = true
	}
	for _, c := range s.canonical {
		if !usedC[c] {
			canonical = append(canonical, c)
		}
	}
	for _, l := range s.labels {
		if _, ok := s.mapping[l]; !ok {
			labels = append(labels, l)
		}
	}
	return canonical, labels
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
