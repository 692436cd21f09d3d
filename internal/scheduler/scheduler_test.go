package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_fetcher/internal/domain"
)

type fakeRunner struct {
	mu        sync.Mutex
	calls     []domain.JobSpec
	deadlines []bool
	err       error
	onRun     func()
}

func (f *fakeRunner) Run(ctx context.Context, spec domain.JobSpec) (*domain.JobResult, error) {
	f.mu.Lock()
	_, hasDeadline := ctx.Deadline()
	f.calls = append(f.calls, spec)
	f.deadlines = append(f.deadlines, hasDeadline)
	onRun := f.onRun
	f.mu.Unlock()

	if onRun != nil {
		onRun()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.JobResult{RunID: "run", Platform: spec.Platform, Status: domain.StatusCompleted}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var jobs = []domain.JobSpec{
	{Platform: domain.PlatformYouTube, SourceID: "UC1"},
	{Platform: domain.PlatformX, SourceID: "someone"},
}

func TestScheduler_RunsJobsImmediatelyAndOnTick(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, Config{Interval: 20 * time.Millisecond, Jobs: jobs}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return runner.count() >= 4 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, jobs[0], runner.calls[0])
	assert.Equal(t, jobs[1], runner.calls[1])
	for _, hasDeadline := range runner.deadlines {
		assert.True(t, hasDeadline)
	}
}

func TestScheduler_RejectedJobDoesNotStopOthers(t *testing.T) {
	runner := &fakeRunner{err: errors.New("platform is required")}
	s := NewScheduler(runner, Config{Interval: time.Hour, Jobs: jobs}, testLogger())

	s.runAll(context.Background())

	assert.Equal(t, 2, runner.count())
}

func TestScheduler_StopsBetweenJobsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{onRun: cancel}
	s := NewScheduler(runner, Config{Interval: time.Hour, Jobs: jobs}, testLogger())

	s.runAll(ctx)

	assert.Equal(t, 1, runner.count())
}
