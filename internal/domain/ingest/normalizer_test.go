package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bill-tracker/internal/domain/extraction"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(extraction.NewCategorizer(), fixedNow)
}

func TestDetectFormat(t *testing.T) {
	t.Run("wide schema", func(t *testing.T) {
		assert.Equal(t, FormatWide, DetectFormat("Date,Shop Address,Item Name,Quantity\n"))
	})

	t.Run("wide schema with odd casing", func(t *testing.T) {
		assert.Equal(t, FormatWide, DetectFormat("DATE,SHOP NAME,ITEM  NAME,QUANTITY\n"))
	})

	t.Run("legacy schema", func(t *testing.T) {
		assert.Equal(t, FormatLegacy, DetectFormat("shop_name,date,total_amount,line_items\n"))
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Equal(t, FormatLegacy, DetectFormat(""))
	})
}

const wideCSV = `Date,Shop Address,Shop Name,Item Name,Quantity,Cost per unit,Total amount paid,Item Type,Item Sub Type
02/09/2025,Corner Market,,Milk 2L,1,3.99,3.99,Dairy,na
02/09/2025,Corner Market,,Bread,2,,5.00,Grain,Sourdough
02/09/2025,Corner Market,,Tax,,,1.20,,
03/15/2025,,Green Grocer,Apple,1.5,$3.99,"$5.99",,na
03/15/2025,Green Grocer,,Basmati Rice 5kg,1,nan,nan,,
`

func TestNormalizer_Wide(t *testing.T) {
	n := newTestNormalizer()

	res, err := n.Normalize(wideCSV)
	require.NoError(t, err)
	assert.Equal(t, FormatWide, res.Format)
	assert.Equal(t, 5, res.RowsTotal)
	assert.Equal(t, 2, res.RowsSkipped) // tax line and the nan-amount row
	assert.Empty(t, res.Errors)

	require.Len(t, res.Bills, 2)

	t.Run("rows group by date and shop", func(t *testing.T) {
		first := res.Bills[0]
		assert.Equal(t, "Corner Market", first.ShopName)
		assert.Equal(t, time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC), first.Date)
		assert.Equal(t, extraction.SourceCSV, first.Source)
		require.Len(t, first.Items, 2)
		assert.Equal(t, "8.99", first.TotalAmount.StringFixed(2))
	})

	t.Run("declared types win over the keyword table", func(t *testing.T) {
		items := res.Bills[0].Items
		assert.Equal(t, "Dairy", items[0].Category)
		// Sub type beats type.
		assert.Equal(t, "Sourdough", items[1].Category)
	})

	t.Run("missing unit cost derives from total and quantity", func(t *testing.T) {
		bread := res.Bills[0].Items[1]
		assert.Equal(t, "2.50", bread.UnitPrice.StringFixed(2))
	})

	t.Run("currency noise is stripped", func(t *testing.T) {
		second := res.Bills[1]
		assert.Equal(t, "Green Grocer", second.ShopName)
		require.Len(t, second.Items, 1)
		assert.Equal(t, "5.99", second.Items[0].LineTotal.StringFixed(2))
		assert.Equal(t, "1.5", second.Items[0].Quantity.String())
	})

	t.Run("absent declared type falls back to keywords", func(t *testing.T) {
		assert.Equal(t, "Fruit", res.Bills[1].Items[0].Category)
	})
}

func TestNormalizer_WideDates(t *testing.T) {
	n := newTestNormalizer()

	t.Run("iso dates parse", func(t *testing.T) {
		csv := "Date,Shop Name,Item Name,Quantity,Cost per unit,Total amount paid,Item Type,Item Sub Type\n" +
			"2025-09-02,Acme Store,Milk,1,3.99,3.99,Dairy,\n"
		res, err := n.Normalize(csv)
		require.NoError(t, err)
		require.Len(t, res.Bills, 1)
		assert.Equal(t, time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), res.Bills[0].Date)
	})

	t.Run("day first is the last resort", func(t *testing.T) {
		csv := "Date,Shop Name,Item Name,Quantity,Cost per unit,Total amount paid,Item Type,Item Sub Type\n" +
			"29/03/2025,Acme Store,Milk,1,3.99,3.99,Dairy,\n"
		res, err := n.Normalize(csv)
		require.NoError(t, err)
		require.Len(t, res.Bills, 1)
		assert.Equal(t, time.Date(2025, 3, 29, 0, 0, 0, 0, time.UTC), res.Bills[0].Date)
	})

	t.Run("unparseable dates skip the row", func(t *testing.T) {
		csv := "Date,Shop Name,Item Name,Quantity,Cost per unit,Total amount paid,Item Type,Item Sub Type\n" +
			"not-a-date,Acme Store,Milk,1,3.99,3.99,Dairy,\n"
		res, err := n.Normalize(csv)
		require.NoError(t, err)
		assert.Empty(t, res.Bills)
		assert.Equal(t, 1, res.RowsSkipped)
	})
}

const legacyCSV = `shop_name,date,total_amount,line_items
Corner Market,2025-02-09,9.49,"Milk 2L,1,3.99,Dairy|Bread,2,2.50"
,bad-date,12.00,"Mystery Gadget,1,12.00"
Acme Store,2025-03-01,not-a-number,
`

func TestNormalizer_Legacy(t *testing.T) {
	n := newTestNormalizer()

	res, err := n.Normalize(legacyCSV)
	require.NoError(t, err)
	assert.Equal(t, FormatLegacy, res.Format)
	assert.Equal(t, 3, res.RowsTotal)

	require.Len(t, res.Bills, 2)

	t.Run("pipe separated items decode", func(t *testing.T) {
		bill := res.Bills[0]
		assert.Equal(t, "Corner Market", bill.ShopName)
		assert.Equal(t, "9.49", bill.TotalAmount.StringFixed(2))
		require.Len(t, bill.Items, 2)
		assert.Equal(t, "Milk 2L", bill.Items[0].Name)
		assert.Equal(t, "Dairy", bill.Items[0].Category)
		// No category in the tuple resolves via keywords.
		assert.Equal(t, "Grain", bill.Items[1].Category)
		assert.Equal(t, "5.00", bill.Items[1].LineTotal.StringFixed(2))
	})

	t.Run("bad date falls back to today and empty shop to unknown", func(t *testing.T) {
		bill := res.Bills[1]
		assert.Equal(t, extraction.UnknownShop, bill.ShopName)
		assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), bill.Date)
	})

	t.Run("bad total reports a row error", func(t *testing.T) {
		require.Len(t, res.Errors, 1)
		assert.Equal(t, 4, res.Errors[0].Row)
		assert.Contains(t, res.Errors[0].Error(), "bad total")
	})
}
