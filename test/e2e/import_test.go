// Package e2etest exercises the CSV import flow end to end: normalization,
// duplicate detection, persistence and search indexing together.
package e2etest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bill-tracker/internal/domain/bills"
	"github.com/FACorreiaa/bill-tracker/internal/domain/extraction"
	"github.com/FACorreiaa/bill-tracker/internal/domain/ingest"
	"github.com/FACorreiaa/bill-tracker/internal/domain/search"
	"github.com/FACorreiaa/bill-tracker/pkg/metrics"
)

// memoryRepo is an in-memory bills.Repository for flow tests.
type memoryRepo struct {
	bills []*bills.Bill
}

func (m *memoryRepo) FindDuplicate(ctx context.Context, shop string, date time.Time, total decimal.Decimal) (*bills.Bill, error) {
	for _, b := range m.bills {
		if b.ShopName == shop && b.Date.Equal(date) && b.TotalAmount.Equal(total) {
			return b, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) Create(ctx context.Context, bill *bills.Bill) error {
	m.bills = append(m.bills, bill)
	return nil
}

func (m *memoryRepo) List(ctx context.Context, filter bills.Filter) ([]bills.Bill, error) {
	out := make([]bills.Bill, 0, len(m.bills))
	for _, b := range m.bills {
		if filter.Month > 0 && int(b.Date.Month()) != filter.Month {
			continue
		}
		if filter.Year > 0 && b.Date.Year() != filter.Year {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *memoryRepo) DeleteAll(ctx context.Context) (bills.DeleteStats, error) {
	stats := bills.DeleteStats{Bills: int64(len(m.bills))}
	for _, b := range m.bills {
		stats.LineItems += int64(len(b.Items))
	}
	m.bills = nil
	return stats, nil
}

func newImportService(t *testing.T, repo *memoryRepo, index *search.Index) *bills.Service {
	t.Helper()
	parser := extraction.NewParser(extraction.DefaultConfig())
	return bills.NewService(bills.ServiceConfig{
		Repo:       repo,
		Normalizer: ingest.NewNormalizer(parser.Categorizer(), time.Now),
		Parser:     parser,
		Index:      index,
		Metrics:    metrics.New(),
	})
}

// wideCSV builds a wide-schema CSV with one generated item row per shop.
func wideCSV(shops []string) string {
	var sb strings.Builder
	sb.WriteString("Date,Shop Name,Item Name,Quantity,Cost per unit,Total amount paid,Item Type\n")
	for i, shop := range shops {
		item := gofakeit.Breakfast()
		price := decimal.NewFromFloat(gofakeit.Price(1, 20)).Round(2)
		fmt.Fprintf(&sb, "2025-02-%02d,%s,%s,1,%s,%s,Snack\n",
			i+1, shop, item, price.StringFixed(2), price.StringFixed(2))
	}
	return sb.String()
}

func TestCSVImportFlow(t *testing.T) {
	gofakeit.Seed(11)

	repo := &memoryRepo{}
	index, err := search.NewIndex()
	require.NoError(t, err)
	svc := newImportService(t, repo, index)

	shops := []string{"Corner Market", "Green Grocer", "Daily Deli"}
	csv := wideCSV(shops)

	result, err := svc.ImportCSV(context.Background(), csv)
	require.NoError(t, err)

	t.Run("creates one bill per shop and day", func(t *testing.T) {
		assert.Equal(t, len(shops), result.BillsCreated)
		assert.Empty(t, result.Errors)
		assert.Len(t, repo.bills, len(shops))
	})

	t.Run("bills carry the csv upload type", func(t *testing.T) {
		for _, b := range repo.bills {
			assert.Equal(t, bills.UploadCSV, b.UploadType)
			assert.False(t, b.IsFallback)
			require.Len(t, b.Items, 1)
			assert.True(t, b.TotalAmount.Equal(b.Items[0].LineTotal))
		}
	})

	t.Run("imported items are searchable", func(t *testing.T) {
		count, err := index.Count()
		require.NoError(t, err)
		assert.Equal(t, uint64(len(shops)), count)

		hits, err := index.Search(context.Background(), "grocer", 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "Green Grocer", hits[0].Document.ShopName)
	})

	t.Run("re-importing the same file skips every bill as a duplicate", func(t *testing.T) {
		again, err := svc.ImportCSV(context.Background(), csv)
		require.NoError(t, err)
		assert.Zero(t, again.BillsCreated)
		assert.Len(t, again.Errors, len(shops))
		for _, msg := range again.Errors {
			assert.Contains(t, msg, "duplicate")
		}
		assert.Len(t, repo.bills, len(shops))
	})

	t.Run("delete all clears bills and the index", func(t *testing.T) {
		stats, err := svc.DeleteAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(len(shops)), stats.Bills)

		count, err := index.Count()
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestCSVImportFlow_LegacySchema(t *testing.T) {
	repo := &memoryRepo{}
	index, err := search.NewIndex()
	require.NoError(t, err)
	svc := newImportService(t, repo, index)

	csv := "shop_name,date,total_amount,line_items\n" +
		`Corner Market,2025-02-09,9.49,"Milk 2L,1,3.99,Dairy|Bread,2,2.75"` + "\n"

	result, err := svc.ImportCSV(context.Background(), csv)
	require.NoError(t, err)
	require.Equal(t, 1, result.BillsCreated)

	bill := repo.bills[0]
	assert.Equal(t, "Corner Market", bill.ShopName)
	assert.Equal(t, "9.49", bill.TotalAmount.StringFixed(2))
	require.Len(t, bill.Items, 2)
	assert.Equal(t, "Dairy", bill.Items[0].Category)
}
