// Package handler exposes the analytics HTTP API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/bill-tracker/internal/domain/insights"
)

// InsightsHandler implements the analysis endpoints.
type InsightsHandler struct {
	svc    *insights.Service
	logger *slog.Logger
}

func NewInsightsHandler(svc *insights.Service, logger *slog.Logger) *InsightsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightsHandler{svc: svc, logger: logger}
}

// Register mounts the analysis routes on the mux.
func (h *InsightsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/analysis/monthly", h.Monthly)
	mux.HandleFunc("GET /api/analysis/summary", h.Summary)
}

// Monthly returns the per-month breakdown. Month and year are required.
func (h *InsightsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	month, monthOK := intParam(r, "month")
	year, yearOK := intParam(r, "year")
	if !monthOK || !yearOK {
		writeError(w, http.StatusBadRequest, "Month and year are required")
		return
	}
	if month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month, must be 1-12")
		return
	}

	analysis, err := h.svc.Monthly(r.Context(), month, year)
	if err != nil {
		h.logger.Error("monthly analysis failed", slog.Int("month", month), slog.Int("year", year), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to compute analysis")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// Summary returns the overall summary with optional month/year filters.
func (h *InsightsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	month, _ := intParam(r, "month")
	year, _ := intParam(r, "year")

	summary, err := h.svc.Overall(r.Context(), month, year)
	if err != nil {
		h.logger.Error("summary failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func intParam(r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
