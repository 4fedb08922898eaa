package jobs

import (
	"context"
	"time"

	"matrimony-otp/internal/usecase"

	"go.uber.org/zap"
)

// CleanupJob periodically sweeps expired OTP records so storage stays
// bounded. The interval is operator-controlled configuration.
type CleanupJob struct {
	service  usecase.OTPService
	interval time.Duration
	log      *zap.Logger
}

func NewCleanupJob(service usecase.OTPService, interval time.Duration, log *zap.Logger) *CleanupJob {
	return &CleanupJob{
		service:  service,
		interval: interval,
		log:      log.With(zap.String("job", "otp_cleanup")),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (j *CleanupJob) Start(ctx context.Context) {
	j.log.Info("Cleanup job started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *CleanupJob) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := j.service.Cleanup(sweepCtx)
	if err != nil {
		j.log.Error("Cleanup sweep failed", zap.Error(err))
		return
	}

	j.log.Debug("Cleanup sweep completed", zap.Int64("deleted", deleted))
}
