package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bill-tracker/internal/domain/extraction"
)

// wideDateLayouts is the accepted order for wide-schema dates: month-first,
// short year, ISO, then day-first for exports from day-first locales.
var wideDateLayouts = []string{"1/2/2006", "1/2/06", "2006-1-2", "2/1/2006"}

// Result is the outcome of normalizing one CSV upload. Errors are per-row and
// non-fatal; a bad row never aborts the rest of the file.
type Result struct {
	Bills       []extraction.CanonicalBill
	Errors      []RowError
	RowsTotal   int
	RowsSkipped int
	Format      Format
}

// Normalizer turns CSV content into canonical bills. Items with no declared
// type fall back to the shared keyword categorizer so both ingestion paths
// agree on categories.
type Normalizer struct {
	categorizer *extraction.Categorizer
	now         func() time.Time
}

func NewNormalizer(categorizer *extraction.Categorizer, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{categorizer: categorizer, now: now}
}

// Normalize sniffs the schema and dispatches to the matching decoder.
func (n *Normalizer) Normalize(content string) (*Result, error) {
	format := DetectFormat(content)
	if format == FormatWide {
		return n.normalizeWide(content)
	}
	return n.normalizeLegacy(content)
}

// billKey groups wide rows into bills. Rows belong together when they share a
// calendar date and a shop.
type billKey struct {
	date string
	shop string
}

func (n *Normalizer) normalizeWide(content string) (*Result, error) {
	var rows []WideRow
	if err := gocsv.UnmarshalString(content, &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	res := &Result{RowsTotal: len(rows), Format: FormatWide}

	grouped := make(map[billKey][]extraction.ExtractedItem)
	dates := make(map[billKey]time.Time)
	var order []billKey

	for i, row := range rows {
		rowNum := i + 2 // 1-indexed plus header

		name := strings.TrimSpace(row.ItemName)
		if name == "" || isTaxLine(name) {
			res.RowsSkipped++
			continue
		}

		date, ok := parseWideDate(strings.TrimSpace(row.Date))
		if !ok {
			res.RowsSkipped++
			continue
		}

		shop := strings.TrimSpace(row.ShopAddress)
		if shop == "" {
			shop = strings.TrimSpace(row.ShopName)
		}
		if shop == "" {
			shop = extraction.UnknownShop
		}

		total, ok, err := parseWideAmount(row.TotalPaid)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if !ok {
			res.RowsSkipped++
			continue
		}

		qty := decimal.NewFromInt(1)
		if q := strings.TrimSpace(row.Quantity); q != "" && !strings.EqualFold(q, "na") {
			parsed, err := decimal.NewFromString(q)
			if err != nil {
				res.Errors = append(res.Errors, RowError{Row: rowNum, Message: fmt.Sprintf("bad quantity %q", q)})
				continue
			}
			qty = parsed
		}

		price, priceOK, err := parseWideAmount(row.CostPerUnit)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if !priceOK {
			if qty.Sign() > 0 {
				price = total.DivRound(qty, 2)
			} else {
				price = total
			}
		}

		key := billKey{date: date.Format("2006-01-02"), shop: shop}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
			dates[key] = date
		}
		grouped[key] = append(grouped[key], extraction.NewItem(name, qty, price, total, n.category(row, name)))
	}

	for _, key := range order {
		items := grouped[key]
		// Zero declared total makes NewBill derive it from the items.
		res.Bills = append(res.Bills, extraction.NewBill(key.shop, dates[key], decimal.Zero, extraction.SourceCSV, items))
	}
	return res, nil
}

func (n *Normalizer) normalizeLegacy(content string) (*Result, error) {
	var rows []LegacyRow
	if err := gocsv.UnmarshalString(content, &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	res := &Result{RowsTotal: len(rows), Format: FormatLegacy}

	for i, row := range rows {
		rowNum := i + 2

		date, err := time.Parse("2006-1-2", strings.TrimSpace(row.Date))
		if err != nil {
			now := n.now()
			date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		}

		shop := strings.TrimSpace(row.ShopName)

		total := decimal.Zero
		if raw := cleanAmount(row.TotalAmount); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				res.Errors = append(res.Errors, RowError{Row: rowNum, Message: fmt.Sprintf("bad total %q", row.TotalAmount)})
				continue
			}
			total = parsed
		}

		items := n.parseLegacyItems(row.LineItems)
		res.Bills = append(res.Bills, extraction.NewBill(shop, date, total, extraction.SourceCSV, items))
	}
	return res, nil
}

// parseLegacyItems decodes "name,qty,price[,category]" tuples joined by "|".
// Malformed tuples are dropped rather than failing the bill.
func (n *Normalizer) parseLegacyItems(raw string) []extraction.ExtractedItem {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var items []extraction.ExtractedItem
	for _, tuple := range strings.Split(raw, "|") {
		parts := strings.Split(tuple, ",")
		if len(parts) < 3 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}

		qty := decimal.NewFromInt(1)
		if q := strings.TrimSpace(parts[1]); q != "" {
			if parsed, err := decimal.NewFromString(q); err == nil {
				qty = parsed
			}
		}

		price := decimal.Zero
		if p := cleanAmount(parts[2]); p != "" {
			if parsed, err := decimal.NewFromString(p); err == nil {
				price = parsed
			}
		}

		category := ""
		if len(parts) > 3 {
			category = strings.TrimSpace(parts[3])
		}
		if category == "" {
			category = n.categorize(name)
		}

		items = append(items, extraction.NewItem(name, qty, price, decimal.Zero, category))
	}
	return items
}

// category resolves the wide-schema category: declared sub type first, then
// type, then the keyword table.
func (n *Normalizer) category(row WideRow, name string) string {
	if sub := strings.TrimSpace(row.ItemSubType); sub != "" && !strings.EqualFold(sub, "na") {
		return sub
	}
	if typ := strings.TrimSpace(row.ItemType); typ != "" {
		return typ
	}
	return n.categorize(name)
}

func (n *Normalizer) categorize(name string) string {
	if n.categorizer == nil {
		return extraction.Uncategorized
	}
	return n.categorizer.Categorize(name)
}

func isTaxLine(name string) bool {
	switch strings.ToLower(name) {
	case "tax", "tax :", "tax:":
		return true
	}
	return false
}

func parseWideDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range wideDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseWideAmount cleans currency noise and parses a decimal. The second
// return is false for absent values ("", "na", "nan") which callers treat as
// skip-or-derive rather than errors.
func parseWideAmount(s string) (decimal.Decimal, bool, error) {
	raw := cleanAmount(s)
	if raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "nan") {
		return decimal.Zero, false, nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("bad amount %q", s)
	}
	return parsed, true, nil
}

func cleanAmount(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
