package jobs

import (
	"context"
	"time"

	"gatherly-api/logger"
	"gatherly-api/services"

	"go.uber.org/zap"
)

// Sweeper closes voting plans whose deadline has passed.
// Implemented by services.PlanService.
type Sweeper interface {
	AutoCloseExpired(ctx context.Context, now time.Time) (services.SweepResult, error)
}

// VotingDeadlineJob periodically auto-closes expired voting rounds
type VotingDeadlineJob struct {
	sweeper Sweeper
	logger  *logger.Logger
	timeout time.Duration
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
	now     func() time.Time
}

// NewVotingDeadlineJob creates a job that sweeps every interval
func NewVotingDeadlineJob(sweeper Sweeper, interval time.Duration, log *logger.Logger) *VotingDeadlineJob {
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := interval
	if timeout > time.Minute {
		timeout = time.Minute
	}
	return &VotingDeadlineJob{
		sweeper: sweeper,
		logger:  log.With(zap.String("job", "voting_deadline")),
		timeout: timeout,
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the sweep loop
func (j *VotingDeadlineJob) Start() {
	j.logger.Info("voting deadline job started")

	go func() {
		defer close(j.stopped)

		// Run immediately on start
		j.sweep()

		for {
			select {
			case <-j.ticker.C:
				j.sweep()
			case <-j.done:
				j.logger.Info("voting deadline job stopped")
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish
func (j *VotingDeadlineJob) Stop() {
	j.ticker.Stop()
	close(j.done)
	<-j.stopped
}

func (j *VotingDeadlineJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.sweeper.AutoCloseExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("voting deadline sweep failed", zap.Error(err))
		return
	}

	if result == (services.SweepResult{}) {
		return
	}
	j.logger.Info("voting deadline sweep completed",
		zap.Int("closed", result.Closed),
		zap.Int("cancelled", result.Cancelled),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
}
