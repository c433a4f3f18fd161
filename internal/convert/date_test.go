package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"12/31'24", day(2024, 12, 31)},
		{"1/2'25", day(2025, 1, 2)},
		{"01/02/2025", day(2025, 1, 2)},
		{"2025-08-01", day(2025, 8, 1)},
		{"2025/08/01", day(2025, 8, 1)},
		{"2025.08.01", day(2025, 8, 1)},
		{"01-02-2025", day(2025, 1, 2)},
		{"20250102", day(2025, 1, 2)},
		{"31/12/2024", day(2024, 12, 31)}, // day-first, unambiguous
		{"2024-12-31T23:59:59Z", day(2024, 12, 31)},
		{"12/31’24", day(2024, 12, 31)}, // curly quote normalized
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseDate_ExcelSerial(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"1", day(1900, 1, 1)},
		{"59", day(1900, 2, 28)},
		{"60", day(1900, 2, 28)}, // Excel's fictitious leap day
		{"61", day(1900, 3, 1)},
		{"45567.75", day(2024, 10, 2)},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseDate_Unrecognized(t *testing.T) {
	for _, in := range []string{"", "  ", "not a date", "13/13/2024", "-5"} {
		_, err := ParseDate(in)
		assert.Error(t, err, "input %q", in)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
