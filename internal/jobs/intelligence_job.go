package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/straye-as/sales-assistant-api/internal/service"
	"go.uber.org/zap"
)

// IntelligenceJobName is the name of the nightly intelligence job
const IntelligenceJobName = "nightly_intelligence"

// IntelligencePass runs one nightly intelligence pass over all tenants
type IntelligencePass interface {
	RunNightlyIntelligencePass(ctx context.Context) (*service.PassSummary, error)
	IsRunning() bool
}

// IntelligenceJob triggers the nightly pass under a run lock
type IntelligenceJob struct {
	pass    IntelligencePass
	lock    RunLock
	lockKey string
	lockTTL time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// NewIntelligenceJob creates the nightly job. lock may be nil to run without one.
func NewIntelligenceJob(pass IntelligencePass, lock RunLock, lockKey string, lockTTL, timeout time.Duration, logger *zap.Logger) *IntelligenceJob {
	return &IntelligenceJob{
		pass:    pass,
		lock:    lock,
		lockKey: lockKey,
		lockTTL: lockTTL,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes one pass with its own timeout. Called by the scheduler.
func (j *IntelligenceJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, _ = j.RunOnce(ctx)
}

// IsRunning reports whether a pass is in progress in this process
func (j *IntelligenceJob) IsRunning() bool {
	return j.pass.IsRunning()
}

// Trigger starts a pass in the background. It returns false when a pass is
// already running in this process.
func (j *IntelligenceJob) Trigger() bool {
	if j.pass.IsRunning() {
		return false
	}
	go j.Run()
	return true
}

// RunOnce executes one pass if the run lock can be taken. ran is false when
// another run holds the lock.
func (j *IntelligenceJob) RunOnce(ctx context.Context) (ran bool, err error) {
	start := time.Now()

	if j.lock != nil {
		token, ok, err := j.lock.TryLock(ctx, j.lockKey, j.lockTTL)
		if err != nil {
			j.logger.Error("failed to acquire intelligence run lock", zap.String("lock_key", j.lockKey), zap.Error(err))
			return false, err
		}
		if !ok {
			j.logger.Info("intelligence run already in progress elsewhere, skipping", zap.String("lock_key", j.lockKey))
			return false, nil
		}
		defer func() {
			if err := j.lock.Unlock(context.WithoutCancel(ctx), j.lockKey, token); err != nil {
				j.logger.Warn("failed to release intelligence run lock", zap.Error(err))
			}
		}()
	}

	j.logger.Info("starting nightly intelligence job")

	summary, err := j.pass.RunNightlyIntelligencePass(ctx)
	if errors.Is(err, service.ErrRunInProgress) {
		j.logger.Info("intelligence pass already running in this process, skipping")
		return false, nil
	}
	if err != nil {
		j.logger.Error("nightly intelligence job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return true, err
	}

	j.logger.Info("nightly intelligence job completed",
		zap.Int("tenants", summary.Tenants),
		zap.Int("failed_tenants", summary.FailedTenants),
		zap.Int("messages_sent", summary.MessagesSent),
		zap.Int("alerts_raised", summary.AlertsRaised),
		zap.Int("errors", summary.Errors),
		zap.Duration("duration", time.Since(start)))
	return true, nil
}

// RegisterIntelligenceJob registers the nightly job with the scheduler. When
// runStartupPass is true a pass also starts immediately in a background goroutine
// so it does not block API startup.
func RegisterIntelligenceJob(scheduler *Scheduler, job *IntelligenceJob, cronExpr string, runStartupPass bool) error {
	if runStartupPass {
		go job.Run()
	}

	return scheduler.AddJob(IntelligenceJobName, cronExpr, job.Run)
}
