package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/bill-tracker/internal/domain/bills"
	billshandler "github.com/FACorreiaa/bill-tracker/internal/domain/bills/handler"
	"github.com/FACorreiaa/bill-tracker/internal/domain/export"
	exporthandler "github.com/FACorreiaa/bill-tracker/internal/domain/export/handler"
	"github.com/FACorreiaa/bill-tracker/internal/domain/extraction"
	"github.com/FACorreiaa/bill-tracker/internal/domain/ingest"
	"github.com/FACorreiaa/bill-tracker/internal/domain/insights"
	insightshandler "github.com/FACorreiaa/bill-tracker/internal/domain/insights/handler"
	"github.com/FACorreiaa/bill-tracker/internal/domain/ocr"
	"github.com/FACorreiaa/bill-tracker/internal/domain/search"
	searchhandler "github.com/FACorreiaa/bill-tracker/internal/domain/search/handler"
	"github.com/FACorreiaa/bill-tracker/pkg/config"
	"github.com/FACorreiaa/bill-tracker/pkg/cron"
	"github.com/FACorreiaa/bill-tracker/pkg/db"
	"github.com/FACorreiaa/bill-tracker/pkg/metrics"
	"github.com/FACorreiaa/bill-tracker/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	BillsRepo    bills.Repository
	InsightsRepo insights.Repository

	// Services
	BillsService    *bills.Service
	InsightsService *insights.Service
	ExportService   *export.Service
	SearchIndex     *search.Index
	FileStorage     storage.Storage
	Metrics         *metrics.Metrics
	Scheduler       *cron.Scheduler

	// Handlers
	BillsHandler    *billshandler.BillsHandler
	InsightsHandler *insightshandler.InsightsHandler
	ExportHandler   *exporthandler.ExportHandler
	SearchHandler   *searchhandler.SearchHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes repositories and the service layer
func (d *Dependencies) initServices() error {
	d.BillsRepo = bills.NewPostgresRepository(d.DB.Pool)
	d.InsightsRepo = insights.NewPostgresRepository(d.DB.Pool)

	fileStorage, err := storage.New(&storage.Config{
		Type:      storage.StorageTypeLocal,
		LocalPath: d.Config.Uploads.Dir,
	})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	index, err := search.NewIndex()
	if err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}
	d.SearchIndex = index

	d.Metrics = metrics.New()

	parser := extraction.NewParser(extraction.DefaultConfig())
	normalizer := ingest.NewNormalizer(parser.Categorizer(), time.Now)

	recognizer := ocr.NewTesseractRecognizer(ocr.Config{
		Tesseract:       d.Config.OCR.Tesseract,
		Lang:            d.Config.OCR.Lang,
		PSM:             d.Config.OCR.PSM,
		RetryPSM:        d.Config.OCR.RetryPSM,
		RetryTextLength: d.Config.OCR.RetryTextLength,
	}, d.Logger)

	d.BillsService = bills.NewService(bills.ServiceConfig{
		Repo:             d.BillsRepo,
		Store:            d.FileStorage,
		Recognizer:       recognizer,
		Parser:           parser,
		Normalizer:       normalizer,
		Index:            d.SearchIndex,
		Metrics:          d.Metrics,
		Logger:           d.Logger,
		MaxConcurrentOCR: d.Config.OCR.MaxConcurrent,
		OCRTimeout:       d.Config.OCR.Timeout,
	})

	d.InsightsService = insights.NewService(d.InsightsRepo)
	d.ExportService = export.NewService(d.BillsRepo, d.Logger)

	d.Scheduler = cron.NewScheduler(d.FileStorage, d.Config.Uploads.RetentionAge, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.BillsHandler = billshandler.NewBillsHandler(d.BillsService, d.Logger)
	d.InsightsHandler = insightshandler.NewInsightsHandler(d.InsightsService, d.Logger)
	d.ExportHandler = exporthandler.NewExportHandler(d.ExportService, d.Logger)
	d.SearchHandler = searchhandler.NewSearchHandler(d.SearchIndex, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
