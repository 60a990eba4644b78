package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractShop(t *testing.T) {
	primary := PrimaryProfile()
	enhanced := EnhancedProfile()

	t.Run("retail indicator wins immediately", func(t *testing.T) {
		lines := []string{"Receipt #1234", "Walmart Supercenter", "123 Main St"}
		assert.Equal(t, "Walmart Supercenter", ExtractShop(lines, primary))
	})

	t.Run("retail indicator beats earlier fallback candidate", func(t *testing.T) {
		lines := []string{"Gonzalez Family", "Corner Market"}
		assert.Equal(t, "Corner Market", ExtractShop(lines, primary))
	})

	t.Run("falls back to first qualifying line", func(t *testing.T) {
		lines := []string{"ab", "Acme Traders", "something else entirely"}
		assert.Equal(t, "Acme Traders", ExtractShop(lines, primary))
	})

	t.Run("metadata labels are not shop names", func(t *testing.T) {
		lines := []string{"Invoice 2231", "Date: 02/09/2025"}
		assert.Equal(t, UnknownShop, ExtractShop(lines, primary))
	})

	t.Run("scan depth bounds the search", func(t *testing.T) {
		lines := make([]string, 12)
		lines[11] = "Corner Market"
		assert.Equal(t, UnknownShop, ExtractShop(lines, primary))
		// The enhanced pass scans deeper.
		assert.Equal(t, "Corner Market", ExtractShop(lines, enhanced))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, UnknownShop, ExtractShop(nil, primary))
	})
}

func TestExtractDate(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		line string
		want time.Time
	}{
		{"month first by default", "02/09/2025", time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)},
		{"four digit year first", "2025-09-02", time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)},
		{"day over twelve forces day first", "29/03/25", time.Date(2025, 3, 29, 0, 0, 0, 0, time.UTC)},
		{"two digit year expanded", "1/5/24", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"textual month", "Date: March 7, 2025", time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)},
		{"abbreviated textual month", "Mar 7, 2025", time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractDate([]string{"header", tc.line, "footer"}, now)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("first parsed date wins", func(t *testing.T) {
		lines := []string{"02/09/2025", "03/10/2025"}
		assert.Equal(t, time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC), ExtractDate(lines, now))
	})

	t.Run("invalid calendar dates are skipped", func(t *testing.T) {
		lines := []string{"99/99/2025", "30/02/2025", "04/11/2025"}
		assert.Equal(t, time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC), ExtractDate(lines, now))
	})

	t.Run("falls back to the processing date", func(t *testing.T) {
		got := ExtractDate([]string{"no dates here"}, now)
		assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), got)
	})
}

func TestExtractTotal(t *testing.T) {
	t.Run("labeled total", func(t *testing.T) {
		total := ExtractTotal([]string{"Milk 3.99", "TOTAL: $45.67"})
		assert.Equal(t, "45.67", total.StringFixed(2))
	})

	t.Run("grand total with thousands separator", func(t *testing.T) {
		total := ExtractTotal([]string{"Grand Total $1,234.56"})
		assert.Equal(t, "1234.56", total.StringFixed(2))
	})

	t.Run("bare currency-marked amount", func(t *testing.T) {
		total := ExtractTotal([]string{"$ 12.50 due"})
		assert.Equal(t, "12.50", total.StringFixed(2))
	})

	t.Run("only the last ten lines are scanned", func(t *testing.T) {
		lines := []string{"TOTAL $99.99"}
		for i := 0; i < 10; i++ {
			lines = append(lines, "filler")
		}
		total := ExtractTotal(lines)
		require.True(t, total.IsZero())
	})

	t.Run("zero when nothing matches", func(t *testing.T) {
		assert.True(t, ExtractTotal([]string{"Milk", "Bread"}).IsZero())
	})
}
