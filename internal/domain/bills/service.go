package bills

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/bill-tracker/internal/domain/extraction"
	"github.com/FACorreiaa/bill-tracker/internal/domain/ingest"
	"github.com/FACorreiaa/bill-tracker/internal/domain/ocr"
	"github.com/FACorreiaa/bill-tracker/pkg/metrics"
	"github.com/FACorreiaa/bill-tracker/pkg/storage"
)

// Indexer receives created bills for full-text search. Indexing failures are
// logged, not returned; search lag must not fail an upload.
type Indexer interface {
	IndexBill(ctx context.Context, bill *Bill) error
	RemoveAll(ctx context.Context) error
}

// DuplicateError reports an upload that matches an existing bill on shop,
// date and total.
type DuplicateError struct {
	Existing *Bill
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate bill: %s on %s with total $%s",
		e.Existing.ShopName, e.Existing.Date.Format("2006-01-02"), e.Existing.TotalAmount.StringFixed(2))
}

// ImportResult is the outcome of a CSV import. Row and duplicate problems are
// collected per-bill; one bad bill never aborts the file.
type ImportResult struct {
	BillsCreated int      `json:"bills_created"`
	Bills        []*Bill  `json:"bills"`
	Errors       []string `json:"errors"`
	RowsTotal    int      `json:"rows_total"`
	RowsSkipped  int      `json:"rows_skipped"`
}

// ServiceConfig wires the ingestion service.
type ServiceConfig struct {
	Repo       Repository
	Store      storage.Storage
	Recognizer ocr.Recognizer
	Parser     *extraction.Parser
	Normalizer *ingest.Normalizer
	Index      Indexer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	// MaxConcurrentOCR bounds simultaneous tesseract runs; OCRTimeout bounds
	// each one.
	MaxConcurrentOCR int
	OCRTimeout       time.Duration
}

// Service runs both ingestion paths end to end.
type Service struct {
	repo       Repository
	store      storage.Storage
	recognizer ocr.Recognizer
	parser     *extraction.Parser
	normalizer *ingest.Normalizer
	index      Indexer
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer

	ocrSem     chan struct{}
	ocrTimeout time.Duration
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxConcurrentOCR <= 0 {
		cfg.MaxConcurrentOCR = 2
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 30 * time.Second
	}
	return &Service{
		repo:       cfg.Repo,
		store:      cfg.Store,
		recognizer: cfg.Recognizer,
		parser:     cfg.Parser,
		normalizer: cfg.Normalizer,
		index:      cfg.Index,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		tracer:     otel.Tracer("bills"),
		ocrSem:     make(chan struct{}, cfg.MaxConcurrentOCR),
		ocrTimeout: cfg.OCRTimeout,
	}
}

// UploadImage stores the image, extracts a bill from it and persists the
// result. A duplicate returns *DuplicateError and removes the stored file.
func (s *Service) UploadImage(ctx context.Context, filename, contentType string, file io.Reader) (*Bill, error) {
	ctx, span := s.tracer.Start(ctx, "bills.UploadImage")
	defer span.End()

	info, err := s.store.Upload(ctx, filename, contentType, file)
	if err != nil {
		s.countUpload(UploadImage, "error")
		return nil, fmt.Errorf("store upload: %w", err)
	}

	canonical, err := s.extract(ctx, info.Path)
	if err != nil {
		s.countUpload(UploadImage, "error")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("shop", canonical.ShopName),
		attribute.Int("items", len(canonical.Items)),
		attribute.Bool("fallback", canonical.Fallback),
	)
	if canonical.Fallback && s.metrics != nil {
		s.metrics.FallbacksTotal.Inc()
	}

	existing, err := s.repo.FindDuplicate(ctx, canonical.ShopName, canonical.Date, canonical.TotalAmount)
	if err != nil {
		s.countUpload(UploadImage, "error")
		return nil, err
	}
	if existing != nil {
		if rmErr := s.store.Remove(ctx, info.Path); rmErr != nil {
			s.logger.Warn("failed to remove duplicate upload", slog.String("path", info.Path), slog.Any("error", rmErr))
		}
		s.countDuplicate(UploadImage)
		return nil, &DuplicateError{Existing: existing}
	}

	bill := fromCanonical(canonical, UploadImage, info.Path)
	if err := s.repo.Create(ctx, bill); err != nil {
		s.countUpload(UploadImage, "error")
		return nil, err
	}
	s.indexBill(ctx, bill)
	s.countUpload(UploadImage, "created")

	s.logger.Info("bill created from image",
		slog.String("bill_id", bill.ID.String()),
		slog.String("shop", bill.ShopName),
		slog.Int("items", len(bill.Items)),
		slog.Bool("fallback", bill.IsFallback),
	)
	return bill, nil
}

// extract runs OCR and parsing under the concurrency bound and per-upload
// timeout. OCR failure degrades to the fallback bill, matching short or
// unreadable text.
func (s *Service) extract(ctx context.Context, path string) (extraction.CanonicalBill, error) {
	select {
	case s.ocrSem <- struct{}{}:
		defer func() { <-s.ocrSem }()
	case <-ctx.Done():
		return extraction.CanonicalBill{}, ctx.Err()
	}

	start := time.Now()
	octx, cancel := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancel()

	text, err := s.recognizer.Recognize(octx, path)
	if err != nil {
		s.logger.Warn("ocr failed, using fallback bill", slog.String("path", path), slog.Any("error", err))
		text = ""
	}

	canonical := s.parser.Parse(text)
	if s.metrics != nil {
		s.metrics.ParseDuration.Observe(time.Since(start).Seconds())
	}
	return canonical, nil
}

// ImportCSV normalizes the upload and persists every non-duplicate bill.
func (s *Service) ImportCSV(ctx context.Context, content string) (*ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "bills.ImportCSV")
	defer span.End()

	normalized, err := s.normalizer.Normalize(content)
	if err != nil {
		s.countUpload(UploadCSV, "error")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("format", normalized.Format.String()),
		attribute.Int("rows", normalized.RowsTotal),
	)

	result := &ImportResult{
		Bills:       []*Bill{},
		Errors:      []string{},
		RowsTotal:   normalized.RowsTotal,
		RowsSkipped: normalized.RowsSkipped,
	}
	for _, rowErr := range normalized.Errors {
		result.Errors = append(result.Errors, rowErr.Error())
	}

	for _, canonical := range normalized.Bills {
		existing, err := s.repo.FindDuplicate(ctx, canonical.ShopName, canonical.Date, canonical.TotalAmount)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.countDuplicate(UploadCSV)
			result.Errors = append(result.Errors, fmt.Sprintf("duplicate bill skipped: %s on %s with total $%s",
				canonical.ShopName, canonical.Date.Format("2006-01-02"), canonical.TotalAmount.StringFixed(2)))
			continue
		}

		bill := fromCanonical(canonical, UploadCSV, "")
		if err := s.repo.Create(ctx, bill); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to create bill for %s on %s: %v",
				canonical.ShopName, canonical.Date.Format("2006-01-02"), err))
			continue
		}
		s.indexBill(ctx, bill)
		s.countUpload(UploadCSV, "created")
		result.Bills = append(result.Bills, bill)
		result.BillsCreated++
	}

	s.logger.Info("csv import finished",
		slog.String("format", normalized.Format.String()),
		slog.Int("bills_created", result.BillsCreated),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// List returns bills matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Bill, error) {
	return s.repo.List(ctx, filter)
}

// DeleteAll wipes every bill and clears the search index.
func (s *Service) DeleteAll(ctx context.Context) (DeleteStats, error) {
	stats, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return DeleteStats{}, err
	}
	if s.index != nil {
		if err := s.index.RemoveAll(ctx); err != nil {
			s.logger.Warn("failed to clear search index", slog.Any("error", err))
		}
	}
	return stats, nil
}

func (s *Service) indexBill(ctx context.Context, bill *Bill) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBill(ctx, bill); err != nil {
		s.logger.Warn("failed to index bill", slog.String("bill_id", bill.ID.String()), slog.Any("error", err))
	}
}

func (s *Service) countUpload(source UploadType, status string) {
	if s.metrics != nil {
		s.metrics.UploadsTotal.WithLabelValues(string(source), status).Inc()
	}
}

func (s *Service) countDuplicate(source UploadType) {
	if s.metrics != nil {
		s.metrics.DuplicatesTotal.WithLabelValues(string(source)).Inc()
	}
}
