// Package overrides persists operator match decisions between CLI runs.
// Each command rebuilds a fresh session, runs auto-match, then replays the
// stored decisions on top, so a manual match made yesterday survives
// today's run.
package overrides

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/qifsync-dev/qifsync/internal/match"
)

// Overrides is the on-disk set of operator decisions.
type Overrides struct {
	// Match pins a ledger transaction (by index) to a group (by id).
	Match map[int]string `yaml:"match,omitempty"`
	// Unmatch excludes ledger transactions from any mapping.
	Unmatch []int `yaml:"unmatch,omitempty"`

	// CategoryMatch pins a spreadsheet label to a canonical ledger name.
	CategoryMatch map[string]string `yaml:"category_match,omitempty"`
	// CategoryUnmatch excludes spreadsheet labels from any mapping.
	CategoryUnmatch []string `yaml:"category_unmatch,omitempty"`
}

// Load reads an overrides file. A missing file is an empty set, not an
// error: overrides are optional.
func Load(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Overrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	return &o, nil
}

// Save writes the overrides file.
func Save(path string, o *Overrides) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshaling overrides: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing overrides: %w", err)
	}
	return nil
}

// SetMatch records a pinned transaction/group pair, clearing any
// conflicting unmatch entry.
func (o *Overrides) SetMatch(txnIndex int, groupID string) {
	if o.Match == nil {
		o.Match = make(map[int]string)
	}
	o.Match[txnIndex] = groupID
	o.Unmatch = removeInt(o.Unmatch, txnIndex)
}

// SetUnmatch records a transaction exclusion, clearing any pin.
func (o *Overrides) SetUnmatch(txnIndex int) {
	delete(o.Match, txnIndex)
	if !containsInt(o.Unmatch, txnIndex) {
		o.Unmatch = append(o.Unmatch, txnIndex)
		sort.Ints(o.Unmatch)
	}
}

// SetCategoryMatch records a pinned label/canonical pair, clearing any
// conflicting unmatch entry.
func (o *Overrides) SetCategoryMatch(label, canonical string) {
	if o.CategoryMatch == nil {
		o.CategoryMatch = make(map[string]string)
	}
	o.CategoryMatch[label] = canonical
	o.CategoryUnmatch = removeString(o.CategoryUnmatch, label)
}

// SetCategoryUnmatch records a label exclusion, clearing any pin.
func (o *Overrides) SetCategoryUnmatch(label string) {
	delete(o.CategoryMatch, label)
	if !containsString(o.CategoryUnmatch, label) {
		o.CategoryUnmatch = append(o.CategoryUnmatch, label)
		sort.Strings(o.CategoryUnmatch)
	}
}

// Apply replays transaction decisions onto a session after auto-match.
// Unmatches run first so a pin can reuse a freed group. Decisions that
// no longer apply (stale index, unknown group, failed validation) are
// returned as warnings rather than failing the run.
func (o *Overrides) Apply(s *match.Session) []string {
	var warnings []string

	for _, ti := range o.Unmatch {
		key := match.Key(ti)
		s.ManualUnmatch(&key, nil)
	}

	// Deterministic replay order.
	indices := make([]int, 0, len(o.Match))
	for ti := range o.Match {
		indices = append(indices, ti)
	}
	sort.Ints(indices)

	for _, ti := range indices {
		gid := o.Match[ti]
		gi := groupIndexByID(s, gid)
		if gi < 0 {
			warnings = append(warnings, fmt.Sprintf("override txn %d: group %q not found", ti, gid))
			continue
		}
		if ok, msg := s.ManualMatch(match.Key(ti), gi); !ok {
			warnings = append(warnings, fmt.Sprintf("override txn %d -> group %q: %s", ti, gid, msg))
		}
	}
	return warnings
}

// ApplyCategories replays category decisions onto a session after
// auto-match.
func (o *Overrides) ApplyCategories(s *match.CategorySession) []string {
	var warnings []string

	for _, label := range o.CategoryUnmatch {
		s.ManualUnmatch(label)
	}

	labels := make([]string, 0, len(o.CategoryMatch))
	for l := range o.CategoryMatch {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, label := range labels {
		canonical := o.CategoryMatch[label]
		if ok, msg := s.ManualMatch(label, canonical); !ok {
			warnings = append(warnings, fmt.Sprintf("override %q -> %q: %s", label, canonical, msg))
		}
	}
	return warnings
}

func groupIndexByID(s *match.Session, id string) int {
	for gi, g := range s.Groups() {
		if g.ID == id {
			return gi
		}
	}
	return -1
}

func removeInt(xs []int, x int) []int {
	out := xs[:0]
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func removeString(xs []string, x string) []string {
	out := xs[:0]
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
