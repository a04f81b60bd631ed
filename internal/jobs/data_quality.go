// Package jobs contains background workers that run on a schedule.
// The data quality job periodically re-runs the directory diagnostics
// (duplicate slugs, orphan soups, soup coverage) and publishes the results
// as Prometheus gauges so dashboards track drift between imports.
// Jobs are idempotent: re-running after a crash produces the same result as a clean run.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/telemetry"
)

// DataQualityJob recomputes directory health metrics on an interval
type DataQualityJob struct {
	statsRepo *repositories.StatsRepository
	interval  time.Duration
	stopChan  chan struct{}
}

// NewDataQualityJob creates a new DataQualityJob
func NewDataQualityJob(statsRepo *repositories.StatsRepository, interval time.Duration) *DataQualityJob {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &DataQualityJob{
		statsRepo: statsRepo,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start runs the job loop until Stop is called or the context is cancelled.
// Call from a goroutine.
func (j *DataQualityJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("data quality job started", "interval", j.interval)

	// Run once immediately on startup
	j.runCheck(ctx)

	for {
		select {
		case <-ticker.C:
			j.runCheck(ctx)
		case <-j.stopChan:
			slog.Info("data quality job stopped")
			return
		case <-ctx.Done():
			slog.Info("data quality job context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (j *DataQualityJob) Stop() {
	close(j.stopChan)
}

// runCheck executes the diagnostics and updates the gauges. A failed query
// logs and leaves the previous gauge value in place.
func (j *DataQualityJob) runCheck(ctx context.Context) {
	if groups, err := j.statsRepo.DuplicateSlugs(ctx); err != nil {
		slog.Error("data quality: duplicate slug check failed", "error", err)
	} else {
		telemetry.DuplicateSlugsGauge.Set(float64(len(groups)))
	}

	if orphans, err := j.statsRepo.OrphanSoups(ctx); err != nil {
		slog.Error("data quality: orphan soup check failed", "error", err)
	} else {
		telemetry.OrphanSoupsGauge.Set(float64(len(orphans)))
	}

	if coverage, err := j.statsRepo.Coverage(ctx); err != nil {
		slog.Error("data quality: coverage check failed", "error", err)
	} else {
		telemetry.SoupCoverageGauge.Set(coverage.SoupCoverageRatio)
	}
}
