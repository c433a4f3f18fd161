package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario D: case-only differences auto-match at the default threshold,
// and unmatching returns both names to their unmatched lists.
func TestCategoryAutoMatch(t *testing.T) {
	s := NewCategorySession(
		[]string{"Groceries", "Dining Out", "Rent"},
		[]string{"groceries", "rent", "Subscriptions"},
	)
	s.AutoMatch(DefaultRatioThreshold)

	m := s.Mapping()
	assert.Equal(t, "Groceries", m["groceries"])
	assert.Equal(t, "Rent", m["rent"])
	assert.NotContains(t, m, "Subscriptions")

	uc, ul := s.Unmatched()
	assert.Equal(t, []string{"Dining Out"}, uc)
	assert.Equal(t, []string{"Subscriptions"}, ul)

	require.True(t, s.ManualUnmatch("groceries"))
	assert.False(t, s.ManualUnmatch("groceries"), "second unmatch is a no-op")
	uc, ul = s.Unmatched()
	assert.Contains(t, uc, "Groceries")
	assert.Contains(t, ul, "groceries")
}

// Higher ratios claim their pair first; ties resolve alphabetically.
func TestCategoryAutoMatch_GreedyOrder(t *testing.T) {
	s := NewCategorySession(
		[]string{"Restaurant"},
		[]string{"Restaurants", "restaurant"},
	)
	s.AutoMatch(DefaultRatioThreshold)

	m := s.Mapping()
	require.Len(t, m, 1)
	assert.Equal(t, "Restaurant", m["restaurant"], "exact normalized match outscores the plural")
}

func TestCategoryManualMatch(t *testing.T) {
	s := NewCategorySession(
		[]string{"Groceries", "Dining Out"},
		[]string{"food", "restaurants"},
	)

	ok, msg := s.ManualMatch("nope", "Groceries")
	assert.False(t, ok)
	assert.Contains(t, msg, "Spreadsheet category")

	ok, msg = s.ManualMatch("food", "Nope")
	assert.False(t, ok)
	assert.Contains(t, msg, "Ledger category")

	ok, msg = s.ManualMatch("food", "Groceries")
	require.True(t, ok)
	assert.Equal(t, "Matched.", msg)

	// Re-assigning the canonical evicts the prior label.
	ok, _ = s.ManualMatch("restaurants", "Groceries")
	require.True(t, ok)
	m := s.Mapping()
	require.Len(t, m, 1)
	assert.Equal(t, "Groceries", m["restaurants"])
	_, ul := s.Unmatched()
	assert.Contains(t, ul, "food")
}

func TestCategoryAutoMatch_Threshold(t *testing.T) {
	s := NewCategorySession([]string{"Grocery"}, []string{"Groceries"})

	s.AutoMatch(DefaultRatioThreshold)
	assert.Empty(t, s.Mapping(), "0.75 similarity is below the default threshold")

	s.AutoMatch(0.7)
	assert.Equal(t, "Grocery", s.Mapping()["Groceries"])
}
