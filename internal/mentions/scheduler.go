package mentions

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler drives a task on a fixed period. It is either stopped or
// running; Restart always tears the timer down before starting a new
// one, so two timers never run for the same schedule. Task failures are
// logged and swallowed, the next tick proceeds regardless.
type Scheduler struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler returns a stopped scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start begins invoking task every interval, with one immediate run. If
// the scheduler is already running it is fully stopped first.
func (s *Scheduler) Start(interval time.Duration, task func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.running = true

	go func() {
		defer close(done)

		runTask(ctx, task)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runTask(ctx, task)
			}
		}
	}()
}

// runTask executes one tick. Ticks run on a single goroutine, so a slow
// task cannot overlap the next one; the ticker drops missed ticks while
// the previous run is still in flight.
func runTask(ctx context.Context, task func(ctx context.Context) error) {
	if err := task(ctx); err != nil {
		log.Printf("Scheduled sync failed: %v", err)
	}
}

// Stop cancels the schedule and waits for the in-progress tick to
// return. Idempotent when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.running = false
}

// Restart is Stop followed by Start
func (s *Scheduler) Restart(interval time.Duration, task func(ctx context.Context) error) {
	s.Stop()
	s.Start(interval, task)
}

// Running reports whether a schedule is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
