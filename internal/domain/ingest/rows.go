// Package ingest normalizes uploaded CSV exports into canonical bills. Two
// schemas are supported: the wide per-item export where every row is one line
// item, and the legacy per-bill export with pipe-separated items.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

func init() {
	// Exports come with mixed-case headers ("Item Name", "item name",
	// "Total amount paid"); fold them before tag matching.
	gocsv.SetHeaderNormalizer(strings.ToLower)
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		r.FieldsPerRecord = -1
		return r
	})
}

// WideRow is one line item in the wide export schema. Amount fields stay
// strings; cleaning and decimal parsing happen in the normalizer.
type WideRow struct {
	Date        string `csv:"date"`
	ShopAddress string `csv:"shop address"`
	ShopName    string `csv:"shop name"`
	ItemName    string `csv:"item name"`
	Quantity    string `csv:"quantity"`
	CostPerUnit string `csv:"cost per unit"`
	TotalPaid   string `csv:"total amount paid"`
	ItemType    string `csv:"item type"`
	ItemSubType string `csv:"item sub type"`
}

// LegacyRow is one bill in the legacy export schema. LineItems holds
// pipe-separated "name,quantity,price[,category]" tuples.
type LegacyRow struct {
	ShopName    string `csv:"shop_name"`
	Date        string `csv:"date"`
	TotalAmount string `csv:"total_amount"`
	LineItems   string `csv:"line_items"`
}

// RowError reports a row that could not be normalized.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}
