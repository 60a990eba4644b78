package insights

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bill-tracker/pkg/money"
)

// MonthlyAnalysis is the per-month breakdown.
type MonthlyAnalysis struct {
	Month             int             `json:"month"`
	Year              int             `json:"year"`
	TotalBills        int64           `json:"total_bills"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	TotalSpentDisplay string          `json:"total_spent_display"`
	Shops             []ShopStat      `json:"shops"`
	Categories        []CategoryStat  `json:"categories"`
	TopItems          []ItemStat      `json:"top_items"`
}

// Summary is the overall view with an optional month/year filter.
type Summary struct {
	TotalBills        int64           `json:"total_bills"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	TotalSpentDisplay string          `json:"total_spent_display"`
	UniqueShops       int64           `json:"unique_shops"`
	TotalItems        int64           `json:"total_items"`
	AvgBillAmount     decimal.Decimal `json:"avg_bill_amount"`
	AvgBillDisplay    string          `json:"avg_bill_display"`
	Filter            SummaryFilter   `json:"filter"`
}

// SummaryFilter echoes the applied filter back to the caller.
type SummaryFilter struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// Service assembles the analytics responses.
type Service struct {
	repo     Repository
	currency string
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, currency: money.USD}
}

// Monthly returns the full analysis for one month.
func (s *Service) Monthly(ctx context.Context, month, year int) (*MonthlyAnalysis, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	if year < 1 {
		return nil, fmt.Errorf("invalid year %d", year)
	}

	count, spent, err := s.repo.BillTotals(ctx, month, year)
	if err != nil {
		return nil, err
	}
	shops, err := s.repo.ShopStats(ctx, month, year)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.CategoryStats(ctx, month, year)
	if err != nil {
		return nil, err
	}
	topItems, err := s.repo.TopItems(ctx, month, year)
	if err != nil {
		return nil, err
	}

	return &MonthlyAnalysis{
		Month:             month,
		Year:              year,
		TotalBills:        count,
		TotalSpent:        spent,
		TotalSpentDisplay: money.Display(spent, s.currency),
		Shops:             emptyIfNil(shops),
		Categories:        emptyIfNil(categories),
		TopItems:          emptyIfNil(topItems),
	}, nil
}

// Overall returns the summary. Month and year are optional; zero disables the
// filter. Unique shops are always counted across all bills.
func (s *Service) Overall(ctx context.Context, month, year int) (*Summary, error) {
	count, spent, err := s.repo.BillTotals(ctx, month, year)
	if err != nil {
		return nil, err
	}
	uniqueShops, err := s.repo.UniqueShops(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ItemCount(ctx, month, year)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = spent.DivRound(decimal.NewFromInt(count), 2)
	}

	return &Summary{
		TotalBills:        count,
		TotalSpent:        spent,
		TotalSpentDisplay: money.Display(spent, s.currency),
		UniqueShops:       uniqueShops,
		TotalItems:        items,
		AvgBillAmount:     avg,
		AvgBillDisplay:    money.Display(avg, s.currency),
		Filter:            SummaryFilter{Month: month, Year: year},
	}, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
