// Package bills owns persisted bills: creation from both ingestion paths,
// duplicate detection, listing and bulk deletion.
package bills

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bill-tracker/internal/domain/extraction"
)

// UploadType records which ingestion path created a bill.
type UploadType string

const (
	UploadImage UploadType = "image"
	UploadCSV   UploadType = "csv"
)

// LineItem is one purchased item on a bill.
type LineItem struct {
	ID        uuid.UUID       `json:"id"`
	BillID    uuid.UUID       `json:"-"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"total"`
	Category  string          `json:"category"`
}

// Bill is a persisted bill with its line items.
type Bill struct {
	ID          uuid.UUID       `json:"id"`
	ShopName    string          `json:"shop_name"`
	Date        time.Time       `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	UploadType  UploadType      `json:"upload_type"`
	FilePath    string          `json:"-"`
	IsFallback  bool            `json:"is_fallback"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []LineItem      `json:"line_items"`
}

// Filter narrows bill listings. Zero values mean no filter.
type Filter struct {
	Month int
	Year  int
}

// DeleteStats reports what a bulk delete removed.
type DeleteStats struct {
	Bills     int64 `json:"bills_deleted"`
	LineItems int64 `json:"line_items_deleted"`
}

// fromCanonical materializes an extracted bill for persistence. IDs are
// assigned here so the search index and the response carry them before the
// insert round-trips.
func fromCanonical(cb extraction.CanonicalBill, uploadType UploadType, filePath string) *Bill {
	bill := &Bill{
		ID:          uuid.New(),
		ShopName:    cb.ShopName,
		Date:        cb.Date,
		TotalAmount: cb.TotalAmount,
		UploadType:  uploadType,
		FilePath:    filePath,
		IsFallback:  cb.Fallback,
		Items:       make([]LineItem, 0, len(cb.Items)),
	}
	for _, item := range cb.Items {
		bill.Items = append(bill.Items, LineItem{
			ID:        uuid.New(),
			BillID:    bill.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
			Category:  item.Category,
		})
	}
	return bill
}
