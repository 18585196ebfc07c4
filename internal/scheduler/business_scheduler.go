package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/statelink/statelink-backend/pkg/logger"
)

const exportTimeout = 5 * time.Minute

// BusinessScheduler runs the daily registry maintenance jobs
type BusinessScheduler struct {
	cron            *cron.Cron
	businessService service.BusinessService
	exportService   service.ExportService
	newBusinessDays int
	now             func() time.Time
}

// NewBusinessScheduler builds the scheduler. exportService may be nil, in
// which case the nightly export is not registered.
func NewBusinessScheduler(
	businessService service.BusinessService,
	exportService service.ExportService,
	newBusinessDays int,
) *BusinessScheduler {
	return &BusinessScheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		businessService: businessService,
		exportService:   exportService,
		newBusinessDays: newBusinessDays,
		now:             time.Now,
	}
}

// Start registers the jobs on the given cron specs and starts the scheduler
func (s *BusinessScheduler) Start(flagRefreshSpec, nightlyExportSpec string) error {
	if _, err := s.cron.AddFunc(flagRefreshSpec, func() {
		if _, err := s.RefreshNewFlags(); err != nil {
			logger.Error("Scheduled flag refresh failed", err)
		}
	}); err != nil {
		logger.Error("Failed to add cron job for flag refresh", err, map[string]interface{}{
			"spec": flagRefreshSpec,
		})
		return err
	}

	if s.exportService != nil {
		if _, err := s.cron.AddFunc(nightlyExportSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
			defer cancel()
			if _, err := s.ExportPreviousDay(ctx); err != nil {
				logger.Error("Scheduled paid-order export failed", err)
			}
		}); err != nil {
			logger.Error("Failed to add cron job for nightly export", err, map[string]interface{}{
				"spec": nightlyExportSpec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Business scheduler started", map[string]interface{}{
		"flag_refresh":   flagRefreshSpec,
		"nightly_export": nightlyExportSpec,
		"export_enabled": s.exportService != nil,
	})
	return nil
}

// Stop waits for running jobs to finish
func (s *BusinessScheduler) Stop() {
	logger.Info("Stopping business scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Business scheduler stopped")
}

// RefreshNewFlags clears the "new" badge on businesses formed more than
// newBusinessDays ago.
func (s *BusinessScheduler) RefreshNewFlags() (int64, error) {
	affected, err := s.businessService.RefreshNewFlags(s.newBusinessDays, s.now())
	if err != nil {
		return 0, err
	}
	logger.Info("Business flags refreshed", map[string]interface{}{
		"affected": affected,
		"days":     s.newBusinessDays,
	})
	return affected, nil
}

// ExportPreviousDay exports yesterday's (UTC) paid orders
func (s *BusinessScheduler) ExportPreviousDay(ctx context.Context) (*service.ExportResult, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -1)

	result, err := s.exportService.ExportPaidOrders(ctx, from, today)
	if err != nil {
		return nil, err
	}
	logger.Info("Nightly paid-order export uploaded", map[string]interface{}{
		"key":  result.Key,
		"rows": result.Rows,
		"from": from.Format("2006-01-02"),
	})
	return result, nil
}
