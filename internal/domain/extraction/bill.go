// Package extraction turns noisy OCR text into canonical bill records.
// It hosts the categorizer, the shop/date/total field extractors, the
// line-item extractor and the orchestrating bill parser. Everything here is
// pure and safe for concurrent use across independent inputs.
package extraction

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownShop is the shop name used when no candidate line qualifies.
const UnknownShop = "Unknown Shop"

// Source identifies where a bill came from.
type Source string

const (
	SourceImage Source = "image"
	SourceCSV   Source = "csv"
)

// ExtractedItem is one purchased product within a bill. When both unit price
// and quantity are known, LineTotal is UnitPrice * Quantity; when only a line
// total is known, UnitPrice is back-computed as LineTotal / Quantity.
type ExtractedItem struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	Category  string
}

// NewItem builds an item, applying the documented defaults: quantity falls
// back to 1, a missing unit price is derived from the line total and a
// missing line total from price * quantity.
func NewItem(name string, quantity, unitPrice, lineTotal decimal.Decimal, category string) ExtractedItem {
	if quantity.Sign() <= 0 {
		quantity = decimal.NewFromInt(1)
	}
	if lineTotal.Sign() == 0 && unitPrice.Sign() > 0 {
		lineTotal = unitPrice.Mul(quantity).Round(2)
	}
	if unitPrice.Sign() == 0 && lineTotal.Sign() > 0 {
		unitPrice = lineTotal.Div(quantity).Round(2)
	}
	if category == "" {
		category = Uncategorized
	}
	return ExtractedItem{
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: lineTotal,
		Category:  category,
	}
}

// CanonicalBill is the normalized bill produced by both the OCR and CSV
// pipelines. It is constructed once per pass and never mutated afterwards.
type CanonicalBill struct {
	ShopName    string
	Date        time.Time
	TotalAmount decimal.Decimal
	Source      Source
	Items       []ExtractedItem

	// Fallback marks the fixed placeholder bill returned when extraction
	// could not produce usable data. Callers must check it so placeholder
	// data is never mistaken for a real extraction.
	Fallback bool
}

// NewBill applies the construction defaults: an empty shop name becomes
// UnknownShop and a zero declared total is derived from the item sum.
func NewBill(shop string, date time.Time, total decimal.Decimal, source Source, items []ExtractedItem) CanonicalBill {
	if shop == "" {
		shop = UnknownShop
	}
	if total.Sign() == 0 && len(items) > 0 {
		total = itemSum(items)
	}
	return CanonicalBill{
		ShopName:    shop,
		Date:        date,
		TotalAmount: total,
		Source:      source,
		Items:       items,
	}
}

// NeedsReview reports the degenerate case: a bill with no items and a zero
// total is still valid but should be surfaced to a human.
func (b CanonicalBill) NeedsReview() bool {
	return len(b.Items) == 0 && b.TotalAmount.Sign() == 0
}

// ItemSum returns the sum of all line totals.
func (b CanonicalBill) ItemSum() decimal.Decimal {
	return itemSum(b.Items)
}

func itemSum(items []ExtractedItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal)
	}
	return sum
}
