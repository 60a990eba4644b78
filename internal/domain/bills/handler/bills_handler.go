// Package handler exposes the bills HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FACorreiaa/bill-tracker/internal/domain/bills"
)

// maxUploadSize caps receipt uploads; high-resolution phone photos run large.
const maxUploadSize = int64(50 << 20) // 50MB

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
}

// BillsHandler implements the bills endpoints.
type BillsHandler struct {
	svc    *bills.Service
	logger *slog.Logger
}

func NewBillsHandler(svc *bills.Service, logger *slog.Logger) *BillsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillsHandler{svc: svc, logger: logger}
}

// Register mounts the bills routes on the mux.
func (h *BillsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/bills/upload-image", h.UploadImage)
	mux.HandleFunc("POST /api/bills/upload-csv", h.UploadCSV)
	mux.HandleFunc("GET /api/bills", h.ListBills)
	mux.HandleFunc("DELETE /api/bills", h.DeleteAllBills)
}

// UploadImage accepts a multipart image upload and returns the created bill.
func (h *BillsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		writeError(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	bill, err := h.svc.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		var dup *bills.DuplicateError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"success":          false,
				"message":          "Duplicate bill detected. This bill already exists.",
				"existing_bill_id": dup.Existing.ID,
				"shop_name":        dup.Existing.ShopName,
				"date":             dup.Existing.Date.Format("2006-01-02"),
				"total_amount":     dup.Existing.TotalAmount,
			})
			return
		}
		h.logger.Error("image upload failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"bill_id":      bill.ID,
		"shop_name":    bill.ShopName,
		"date":         bill.Date.Format("2006-01-02"),
		"total_amount": bill.TotalAmount,
		"is_fallback":  bill.IsFallback,
		"line_items":   bill.Items,
	})
}

// UploadCSV accepts a multipart CSV upload and imports its bills.
func (h *BillsHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".csv" {
		writeError(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	result, err := h.svc.ImportCSV(r.Context(), string(content))
	if err != nil {
		h.logger.Error("csv import failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to process CSV")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":       true,
		"bills_created": result.BillsCreated,
		"bills":         result.Bills,
		"errors":        result.Errors,
	})
}

// ListBills returns bills, optionally filtered by month and year.
func (h *BillsHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	var filter bills.Filter
	if v := r.URL.Query().Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		filter.Month = month
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 {
			writeError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		filter.Year = year
	}

	list, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list bills failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to list bills")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bills": list})
}

// DeleteAllBills wipes every bill.
func (h *BillsHandler) DeleteAllBills(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DeleteAll(r.Context())
	if err != nil {
		h.logger.Error("delete bills failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to delete bills")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            "All bills deleted successfully",
		"bills_deleted":      stats.Bills,
		"line_items_deleted": stats.LineItems,
	})
}

func (h *BillsHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return nil, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return nil, nil, false
	}
	if header.Filename == "" {
		file.Close()
		writeError(w, http.StatusBadRequest, "No file selected")
		return nil, nil, false
	}
	return file, header, true
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
