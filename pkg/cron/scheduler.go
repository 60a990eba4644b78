// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/bill-tracker/pkg/storage"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron         *cron.Cron
	store        storage.Storage
	retentionAge time.Duration
	logger       *slog.Logger
}

// NewScheduler creates a new job scheduler. retentionAge controls how long
// uploaded receipt files are kept before the purge job removes them.
func NewScheduler(store storage.Storage, retentionAge time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:         c,
		store:        store,
		retentionAge: retentionAge,
		logger:       logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Upload retention purge: runs daily at 3:00 AM
	_, err := s.cron.AddFunc("0 3 * * *", s.purgeOldUploads)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the upload purge (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.purgeOldUploads()
}

// purgeOldUploads removes stored receipt files older than the retention age.
// Bills stay in the database; only the original upload is discarded.
func (s *Scheduler) purgeOldUploads() {
	if s.retentionAge <= 0 {
		s.logger.Debug("upload retention disabled, skipping purge")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Info("starting upload retention purge",
		slog.Duration("retention_age", s.retentionAge),
	)

	removed, err := s.store.PurgeOlderThan(ctx, s.retentionAge)
	if err != nil {
		s.logger.Error("upload purge failed", slog.Any("error", err))
		return
	}

	s.logger.Info("upload retention purge complete",
		slog.Int("files_removed", removed),
	)
}
