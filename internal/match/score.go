package match

import (
	"strings"
	"time"
)

// DateWindowDays is the tolerance between a ledger transaction's date and
// a group's representative date.
const DateWindowDays = 3

// DefaultRatioThreshold is the minimum similarity for category auto-match.
const DefaultRatioThreshold = 0.84

// DateCost returns the absolute day distance between two dates and
// whether the pair is eligible (distance within the date window). Lower
// is better; 0 means same day.
func DateCost(a, b time.Time) (int, bool) {
	delta := int(a.Sub(b).Hours() / 24)
	if delta < 0 {
		delta = -delta
	}
	if delta > DateWindowDays {
		return 0, false
	}
	return delta, true
}

// Ratio returns a similarity score in [0, 1] between two labels:
// 2*LCS(a, b) / (len(a) + len(b)) over the lower-cased, trimmed runes.
// Identical normalized labels score 1.0.
func Ratio(a, b string) float64 {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	return 2.0 * float64(lcs(ra, rb)) / float64(len(ra)+len(rb))
}

// lcs computes the longest-common-subsequence length with a rolling
// two-row table.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
