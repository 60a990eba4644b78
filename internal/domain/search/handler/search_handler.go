// Package handler exposes the line-item search endpoint.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/bill-tracker/internal/domain/search"
)

// SearchHandler implements GET /api/bills/search.
type SearchHandler struct {
	index  *search.Index
	logger *slog.Logger
}

func NewSearchHandler(index *search.Index, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{index: index, logger: logger}
}

// Register mounts the search route on the mux.
func (h *SearchHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/bills/search", h.Search)
}

// Search returns line items matching the q parameter.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Query parameter q is required"})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	hits, err := h.index.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("search failed", slog.String("query", query), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": hits,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}
