package bills

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// PGX is the subset of pgxpool.Pool the repository needs. Tests satisfy it
// with pgxmock.
type PGX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository handles bill persistence.
type Repository interface {
	FindDuplicate(ctx context.Context, shop string, date time.Time, total decimal.Decimal) (*Bill, error)
	Create(ctx context.Context, bill *Bill) error
	List(ctx context.Context, filter Filter) ([]Bill, error)
	DeleteAll(ctx context.Context) (DeleteStats, error)
}

// PostgresRepository is the pgx-backed Repository.
type PostgresRepository struct {
	db PGX
}

func NewPostgresRepository(db PGX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const billColumns = `id, shop_name, bill_date, total_amount, upload_type, file_path, is_fallback, created_at`

// FindDuplicate looks up a bill with the same shop, date and total. A nil
// bill with a nil error means no duplicate exists.
func (r *PostgresRepository) FindDuplicate(ctx context.Context, shop string, date time.Time, total decimal.Decimal) (*Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE shop_name = $1 AND bill_date = $2 AND total_amount = $3
		LIMIT 1
	`

	var b Bill
	var filePath *string
	err := r.db.QueryRow(ctx, query, shop, date, total).Scan(
		&b.ID,
		&b.ShopName,
		&b.Date,
		&b.TotalAmount,
		&b.UploadType,
		&filePath,
		&b.IsFallback,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate: %w", err)
	}
	if filePath != nil {
		b.FilePath = *filePath
	}
	return &b, nil
}

// Create inserts a bill and its line items in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, bill *Bill) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO bills (id, shop_name, bill_date, total_amount, upload_type, file_path, is_fallback)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, bill.ID, bill.ShopName, bill.Date, bill.TotalAmount, bill.UploadType, nullable(bill.FilePath), bill.IsFallback)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}

	for _, item := range bill.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO line_items (id, bill_id, item_name, quantity, unit_price, line_total, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, bill.ID, item.Name, item.Quantity, item.UnitPrice, item.LineTotal, item.Category)
		if err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// List returns bills newest-first, with line items attached. Month and year
// filters apply to the bill date.
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	var conds []string
	var args []any
	if filter.Month > 0 {
		args = append(args, filter.Month)
		conds = append(conds, fmt.Sprintf("EXTRACT(MONTH FROM bill_date) = $%d", len(args)))
	}
	if filter.Year > 0 {
		args = append(args, filter.Year)
		conds = append(conds, fmt.Sprintf("EXTRACT(YEAR FROM bill_date) = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY bill_date DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []Bill
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var b Bill
		var filePath *string
		if err := rows.Scan(&b.ID, &b.ShopName, &b.Date, &b.TotalAmount, &b.UploadType, &filePath, &b.IsFallback, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if filePath != nil {
			b.FilePath = *filePath
		}
		b.Items = []LineItem{}
		index[b.ID] = len(bills)
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if len(bills) == 0 {
		return bills, nil
	}

	ids := make([]uuid.UUID, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.ID)
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT id, bill_id, item_name, quantity, unit_price, line_total, category
		FROM line_items
		WHERE bill_id = ANY($1)
		ORDER BY item_name
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item LineItem
		if err := itemRows.Scan(&item.ID, &item.BillID, &item.Name, &item.Quantity, &item.UnitPrice, &item.LineTotal, &item.Category); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		if i, ok := index[item.BillID]; ok {
			bills[i].Items = append(bills[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}

	return bills, nil
}

// DeleteAll removes every bill. Line items go with them via the cascade.
func (r *PostgresRepository) DeleteAll(ctx context.Context) (DeleteStats, error) {
	var stats DeleteStats
	err := r.db.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM bills), (SELECT COUNT(*) FROM line_items)
	`).Scan(&stats.Bills, &stats.LineItems)
	if err != nil {
		return DeleteStats{}, fmt.Errorf("count bills: %w", err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM bills`); err != nil {
		return DeleteStats{}, fmt.Errorf("delete bills: %w", err)
	}
	return stats, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
