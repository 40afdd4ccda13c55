package jobs

import (
	"context"
	"time"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	registrations service.RegistrationService
	config        *config.Config
	now           func() time.Time
	timeout       time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(registrations service.RegistrationService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		registrations: registrations,
		config:        cfg,
		now:           time.Now,
		timeout:       10 * time.Minute,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a bounded context
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.ExpireRegistrations()
	jr.SendRenewalReminders()
}
