// Package handler serves the bills XLSX download.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FACorreiaa/bill-tracker/internal/domain/bills"
	"github.com/FACorreiaa/bill-tracker/internal/domain/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler implements GET /api/analysis/export.
type ExportHandler struct {
	svc    *export.Service
	logger *slog.Logger
}

func NewExportHandler(svc *export.Service, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{svc: svc, logger: logger}
}

// Register mounts the export route on the mux.
func (h *ExportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/analysis/export", h.ExportBills)
}

// ExportBills streams an XLSX workbook of bills, optionally filtered by
// month and year query parameters.
func (h *ExportHandler) ExportBills(w http.ResponseWriter, r *http.Request) {
	var filter bills.Filter
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month, must be 1-12")
			return
		}
		filter.Month = n
	}
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		filter.Year = n
	}

	data, err := h.svc.BillsXLSX(r.Context(), filter)
	if err != nil {
		h.logger.Error("export failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	filename := fmt.Sprintf("bills-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export body", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}
