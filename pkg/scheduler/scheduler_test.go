package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/wouldreads/pkg/domain"
	"github.com/umputun/wouldreads/pkg/scheduler/mocks"
)

func TestNewScheduler(t *testing.T) {
	refresher := &mocks.RefresherMock{}

	s := NewScheduler(Params{Refresher: refresher, Interval: 5 * time.Minute})
	assert.Equal(t, 5*time.Minute, s.interval)
	assert.False(t, s.runOnStart)

	s = NewScheduler(Params{Refresher: refresher})
	assert.Equal(t, 30*time.Minute, s.interval, "default interval")
}

func TestScheduler_StartStop(t *testing.T) {
	refresher := &mocks.RefresherMock{RefreshFunc: func(ctx context.Context) ([]domain.Article, error) {
		return []domain.Article{{ID: "1"}}, nil
	}}

	s := NewScheduler(Params{Refresher: refresher, Interval: 20 * time.Millisecond})
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return len(refresher.RefreshCalls()) >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	calls := len(refresher.RefreshCalls())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, len(refresher.RefreshCalls()), "no refresh after stop")
}

func TestScheduler_RunOnStart(t *testing.T) {
	refresher := &mocks.RefresherMock{RefreshFunc: func(ctx context.Context) ([]domain.Article, error) {
		return nil, nil
	}}

	s := NewScheduler(Params{Refresher: refresher, Interval: time.Hour, RunOnStart: true})
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return len(refresher.RefreshCalls()) == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestScheduler_RefreshErrorsKeepRunning(t *testing.T) {
	refresher := &mocks.RefresherMock{RefreshFunc: func(ctx context.Context) ([]domain.Article, error) {
		return nil, errors.New("aggregation failed")
	}}

	s := NewScheduler(Params{Refresher: refresher, Interval: 10 * time.Millisecond})
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return len(refresher.RefreshCalls()) >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestScheduler_ParentContextCancel(t *testing.T) {
	refresher := &mocks.RefresherMock{RefreshFunc: func(ctx context.Context) ([]domain.Article, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(Params{Refresher: refresher, Interval: time.Hour, RunOnStart: true})
	s.Start(ctx)
	assert.Eventually(t, func() bool { return len(refresher.RefreshCalls()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Stop()
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler(Params{Refresher: &mocks.RefresherMock{}})
	s.Stop()
}
