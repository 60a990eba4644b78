package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bill-tracker/internal/domain/insights"
)

// MockRepository implements insights.Repository for testing
type MockRepository struct {
	billCount int64
	spent     decimal.Decimal
}

func (m *MockRepository) ShopStats(ctx context.Context, month, year int) ([]insights.ShopStat, error) {
	return nil, nil
}

func (m *MockRepository) CategoryStats(ctx context.Context, month, year int) ([]insights.CategoryStat, error) {
	return nil, nil
}

func (m *MockRepository) TopItems(ctx context.Context, month, year int) ([]insights.ItemStat, error) {
	return nil, nil
}

func (m *MockRepository) BillTotals(ctx context.Context, month, year int) (int64, decimal.Decimal, error) {
	return m.billCount, m.spent, nil
}

func (m *MockRepository) UniqueShops(ctx context.Context) (int64, error) { return 1, nil }

func (m *MockRepository) ItemCount(ctx context.Context, month, year int) (int64, error) {
	return 3, nil
}

func newTestMux() *http.ServeMux {
	svc := insights.NewService(&MockRepository{billCount: 2, spent: decimal.RequireFromString("50.00")})
	mux := http.NewServeMux()
	NewInsightsHandler(svc, nil).Register(mux)
	return mux
}

func TestInsightsHandler_Monthly(t *testing.T) {
	mux := newTestMux()

	t.Run("returns the breakdown", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analysis/monthly?month=2&year=2025", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(2), body["month"])
		assert.Equal(t, float64(2025), body["year"])
		assert.Equal(t, "$50.00", body["total_spent_display"])
	})

	t.Run("month is required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analysis/monthly?year=2025", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("month out of range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analysis/monthly?month=13&year=2025", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInsightsHandler_Summary(t *testing.T) {
	mux := newTestMux()

	t.Run("works without a filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analysis/summary", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(2), body["total_bills"])
		assert.Equal(t, "$25.00", body["avg_bill_display"])
	})

	t.Run("a non-positive month is treated as no filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analysis/summary?month=0", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotContains(t, body["filter"], "month")
	})
}
