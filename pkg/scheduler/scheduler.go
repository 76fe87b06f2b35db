// Package scheduler runs periodic refresh of the article list
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/wouldreads/pkg/domain"
)

//go:generate moq -out mocks/refresher.go -pkg mocks -skip-ensure -fmt goimports . Refresher

// Refresher runs a full refresh of the canonical list
type Refresher interface {
	Refresh(ctx context.Context) ([]domain.Article, error)
}

// Params for the scheduler
type Params struct {
	Refresher  Refresher
	Interval   time.Duration
	RunOnStart bool // refresh immediately instead of waiting for the first tick
}

// Scheduler manages periodic refresh
type Scheduler struct {
	refresher  Refresher
	interval   time.Duration
	runOnStart bool
	wg         sync.WaitGroup
	cancel     context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(params Params) *Scheduler {
	if params.Interval <= 0 {
		params.Interval = 30 * time.Minute
	}
	return &Scheduler{
		refresher:  params.Refresher,
		interval:   params.Interval,
		runOnStart: params.RunOnStart,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.refreshWorker(ctx)

	lgr.Printf("[INFO] scheduler started with refresh interval %v", s.interval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// refreshWorker periodically refreshes the canonical list
func (s *Scheduler) refreshWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.refresh(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	list, err := s.refresher.Refresh(ctx)
	switch {
	case err == nil:
		lgr.Printf("[DEBUG] scheduled refresh completed, %d articles", len(list))
	case errors.Is(err, context.Canceled):
		lgr.Printf("[DEBUG] scheduled refresh canceled")
	default:
		// concurrent manual refresh or aggregate failure, next tick retries
		lgr.Printf("[WARN] scheduled refresh failed: %v", err)
	}
}
