package natsjobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/service"
)

type fakeJobs struct {
	spec     domain.JobSpec
	result   *domain.JobResult
	err      error
	deadline bool
}

func (f *fakeJobs) Run(ctx context.Context, spec domain.JobSpec) (*domain.JobResult, error) {
	f.spec = spec
	_, f.deadline = ctx.Deadline()
	return f.result, f.err
}

func (f *fakeJobs) ListJobs(context.Context, *domain.Platform) ([]domain.FetchJob, error) {
	return nil, nil
}

func (f *fakeJobs) Platforms(context.Context) []service.PlatformStatus {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestHandle_Success(t *testing.T) {
	jobs := &fakeJobs{result: &domain.JobResult{
		RunID:        "run-1",
		Platform:     domain.PlatformTelegram,
		SourceID:     "channel",
		ItemsFetched: 3,
		NewItems:     3,
		Duration:     250 * time.Millisecond,
		Status:       domain.StatusCompleted,
	}}
	s := NewSubscriber(jobs, Config{Subject: "jobs.fetch"}, testLogger())

	reply := decode(t, s.Handle([]byte(`{"platform":"telegram","sourceId":"channel"}`)))

	assert.Equal(t, true, reply["success"])
	assert.Equal(t, float64(3), reply["newItems"])
	assert.Equal(t, float64(250), reply["duration"])
	assert.Equal(t, []any{}, reply["errorMessages"])
	assert.Equal(t, domain.JobSpec{Platform: domain.PlatformTelegram, SourceID: "channel"}, jobs.spec)
	assert.True(t, jobs.deadline)
}

func TestHandle_InvalidBody(t *testing.T) {
	s := NewSubscriber(&fakeJobs{}, Config{}, testLogger())

	reply := decode(t, s.Handle([]byte(`not json`)))

	assert.Equal(t, false, reply["success"])
	assert.Contains(t, reply["error"], "body")
}

func TestHandle_ValidationFailure(t *testing.T) {
	jobs := &fakeJobs{}
	s := NewSubscriber(jobs, Config{}, testLogger())

	reply := decode(t, s.Handle([]byte(`{"sourceId":"a"}`)))

	assert.Equal(t, false, reply["success"])
	assert.Contains(t, reply["error"], "platform")
	assert.Empty(t, jobs.spec.SourceID)
}

func TestHandle_RunError(t *testing.T) {
	s := NewSubscriber(&fakeJobs{err: errors.New("boom")}, Config{}, testLogger())

	reply := decode(t, s.Handle([]byte(`{"platform":"x","searchQuery":"q"}`)))

	assert.Equal(t, false, reply["success"])
	assert.Equal(t, "boom", reply["error"])
}
