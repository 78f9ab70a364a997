package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gatherly-api/logger"
	"gatherly-api/services"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (s *countingSweeper) AutoCloseExpired(_ context.Context, now time.Time) (services.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, now)
	return services.SweepResult{Closed: 1}, s.err
}

func (s *countingSweeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestVotingDeadlineJobSweepsOnStartAndTick(t *testing.T) {
	sweeper := &countingSweeper{}
	job := NewVotingDeadlineJob(sweeper, 10*time.Millisecond, logger.NewNop())
	fixed := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	job.Start()
	deadline := time.Now().Add(2 * time.Second)
	for sweeper.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	job.Stop()

	if sweeper.count() < 2 {
		t.Fatalf("sweeps = %d, want at least 2", sweeper.count())
	}
	if !sweeper.calls[0].Equal(fixed) {
		t.Fatalf("sweep time = %v", sweeper.calls[0])
	}

	after := sweeper.count()
	time.Sleep(30 * time.Millisecond)
	if sweeper.count() != after {
		t.Fatal("job kept sweeping after Stop")
	}
}

func TestVotingDeadlineJobSurvivesErrors(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("db down")}
	job := NewVotingDeadlineJob(sweeper, time.Hour, logger.NewNop())

	job.Start()
	deadline := time.Now().Add(2 * time.Second)
	for sweeper.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	job.Stop()

	if sweeper.count() != 1 {
		t.Fatalf("sweeps = %d, want 1", sweeper.count())
	}
}
