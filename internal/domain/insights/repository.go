// Package insights computes spending analytics over persisted bills.
package insights

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bill-tracker/internal/domain/bills"
)

// ShopStat aggregates bills per shop.
type ShopStat struct {
	ShopName   string          `json:"shop_name"`
	BillCount  int64           `json:"bill_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// CategoryStat aggregates line items per category.
type CategoryStat struct {
	Category   string          `json:"category"`
	ItemCount  int64           `json:"item_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// ItemStat aggregates purchases per item name.
type ItemStat struct {
	ItemName      string          `json:"item_name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	PurchaseCount int64           `json:"purchase_count"`
}

// topItemsLimit bounds the per-month item ranking.
const topItemsLimit = 20

// Repository runs the aggregation queries.
type Repository interface {
	ShopStats(ctx context.Context, month, year int) ([]ShopStat, error)
	CategoryStats(ctx context.Context, month, year int) ([]CategoryStat, error)
	TopItems(ctx context.Context, month, year int) ([]ItemStat, error)
	BillTotals(ctx context.Context, month, year int) (count int64, spent decimal.Decimal, err error)
	UniqueShops(ctx context.Context) (int64, error)
	ItemCount(ctx context.Context, month, year int) (int64, error)
}

// PostgresRepository is the pgx-backed Repository.
type PostgresRepository struct {
	db bills.PGX
}

func NewPostgresRepository(db bills.PGX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// monthYearFilter builds the optional WHERE clause. Zero month or year means
// no filter on that part.
func monthYearFilter(column string, month, year int) (string, []any) {
	var conds string
	var args []any
	if month > 0 {
		args = append(args, month)
		conds = fmt.Sprintf("EXTRACT(MONTH FROM %s) = $%d", column, len(args))
	}
	if year > 0 {
		args = append(args, year)
		cond := fmt.Sprintf("EXTRACT(YEAR FROM %s) = $%d", column, len(args))
		if conds != "" {
			conds += " AND " + cond
		} else {
			conds = cond
		}
	}
	if conds != "" {
		conds = " WHERE " + conds
	}
	return conds, args
}

func (r *PostgresRepository) ShopStats(ctx context.Context, month, year int) ([]ShopStat, error) {
	where, args := monthYearFilter("bill_date", month, year)
	query := `
		SELECT shop_name, COUNT(id), COALESCE(SUM(total_amount), 0)
		FROM bills` + where + `
		GROUP BY shop_name
		ORDER BY SUM(total_amount) DESC
	`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("shop stats: %w", err)
	}
	defer rows.Close()

	var stats []ShopStat
	for rows.Next() {
		var s ShopStat
		if err := rows.Scan(&s.ShopName, &s.BillCount, &s.TotalSpent); err != nil {
			return nil, fmt.Errorf("scan shop stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *PostgresRepository) CategoryStats(ctx context.Context, month, year int) ([]CategoryStat, error) {
	where, args := monthYearFilter("b.bill_date", month, year)
	query := `
		SELECT li.category, COUNT(li.id), COALESCE(SUM(li.line_total), 0)
		FROM line_items li
		JOIN bills b ON b.id = li.bill_id` + where + `
		GROUP BY li.category
		ORDER BY SUM(li.line_total) DESC
	`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var s CategoryStat
		if err := rows.Scan(&s.Category, &s.ItemCount, &s.TotalSpent); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *PostgresRepository) TopItems(ctx context.Context, month, year int) ([]ItemStat, error) {
	where, args := monthYearFilter("b.bill_date", month, year)
	args = append(args, topItemsLimit)
	query := fmt.Sprintf(`
		SELECT li.item_name, COALESCE(SUM(li.quantity), 0), COALESCE(SUM(li.line_total), 0), COUNT(li.id)
		FROM line_items li
		JOIN bills b ON b.id = li.bill_id%s
		GROUP BY li.item_name
		ORDER BY SUM(li.line_total) DESC
		LIMIT $%d
	`, where, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()

	var stats []ItemStat
	for rows.Next() {
		var s ItemStat
		if err := rows.Scan(&s.ItemName, &s.TotalQuantity, &s.TotalSpent, &s.PurchaseCount); err != nil {
			return nil, fmt.Errorf("scan item stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *PostgresRepository) BillTotals(ctx context.Context, month, year int) (int64, decimal.Decimal, error) {
	where, args := monthYearFilter("bill_date", month, year)
	query := `SELECT COUNT(id), COALESCE(SUM(total_amount), 0) FROM bills` + where

	var count int64
	var spent decimal.Decimal
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count, &spent); err != nil {
		return 0, decimal.Zero, fmt.Errorf("bill totals: %w", err)
	}
	return count, spent, nil
}

func (r *PostgresRepository) UniqueShops(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(DISTINCT shop_name) FROM bills`).Scan(&count); err != nil {
		return 0, fmt.Errorf("unique shops: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ItemCount(ctx context.Context, month, year int) (int64, error) {
	where, args := monthYearFilter("b.bill_date", month, year)
	query := `SELECT COUNT(li.id) FROM line_items li JOIN bills b ON b.id = li.bill_id` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("item count: %w", err)
	}
	return count, nil
}
