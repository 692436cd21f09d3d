package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/service"
)

type fakeJobs struct {
	runSpec    domain.JobSpec
	runResult  *domain.JobResult
	runErr     error
	listFilter *domain.Platform
	listResult []domain.FetchJob
	listErr    error
	platforms  []service.PlatformStatus
	panicOnRun bool
}

func (f *fakeJobs) Run(_ context.Context, spec domain.JobSpec) (*domain.JobResult, error) {
	if f.panicOnRun {
		panic("connector exploded")
	}
	f.runSpec = spec
	return f.runResult, f.runErr
}

func (f *fakeJobs) ListJobs(_ context.Context, platform *domain.Platform) ([]domain.FetchJob, error) {
	f.listFilter = platform
	return f.listResult, f.listErr
}

func (f *fakeJobs) Platforms(context.Context) []service.PlatformStatus {
	return f.platforms
}

type ServerTestSuite struct {
	suite.Suite
	jobs   *fakeJobs
	server *Server
}

func (s *ServerTestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.jobs = &fakeJobs{}
	s.server = NewServer(s.jobs, Config{Addr: ":0", JobTimeout: time.Minute}, logger)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) do(method, target, body string) (int, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.App().Test(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (s *ServerTestSuite) TestSubmitJob_ReturnsResult() {
	s.jobs.runResult = &domain.JobResult{
		RunID:         "run-1",
		Platform:      domain.PlatformYouTube,
		SourceID:      "UC1",
		ItemsFetched:  5,
		NewItems:      4,
		ErrorMessages: []string{"persist youtube/v5: down"},
		Duration:      1500 * time.Millisecond,
		Status:        domain.StatusFailed,
	}

	code, body := s.do(nethttp.MethodPost, "/api/fetch", `{"platform":"youtube","sourceId":"UC1","maxItems":5}`)

	s.Equal(nethttp.StatusOK, code)
	s.Equal(true, body["success"])
	s.Equal(float64(5), body["itemsFetched"])
	s.Equal(float64(4), body["newItems"])
	s.Equal(float64(1500), body["duration"])
	s.Equal("failed", body["status"])
	s.Len(body["errorMessages"], 1)
	s.Equal(domain.JobSpec{Platform: domain.PlatformYouTube, SourceID: "UC1", MaxItems: 5}, s.jobs.runSpec)
}

func (s *ServerTestSuite) TestSubmitJob_ValidationFailure() {
	code, body := s.do(nethttp.MethodPost, "/api/fetch", `{"platform":"youtube"}`)

	s.Equal(nethttp.StatusBadRequest, code)
	s.Equal(false, body["success"])
	s.Contains(body["error"], "sourceId")
}

func (s *ServerTestSuite) TestSubmitJob_MalformedBody() {
	code, body := s.do(nethttp.MethodPost, "/api/fetch", `{"platform":`)

	s.Equal(nethttp.StatusBadRequest, code)
	s.Equal(false, body["success"])
}

func (s *ServerTestSuite) TestSubmitJob_UnknownPlatform() {
	s.jobs.runErr = &domain.ConfigurationError{Platform: "myspace"}

	code, body := s.do(nethttp.MethodPost, "/api/fetch", `{"platform":"myspace","sourceId":"a"}`)

	s.Equal(nethttp.StatusBadRequest, code)
	s.Contains(body["error"], "myspace")
}

func (s *ServerTestSuite) TestSubmitJob_UnexpectedError() {
	s.jobs.runErr = errors.New("boom")

	code, body := s.do(nethttp.MethodPost, "/api/fetch", `{"platform":"youtube","sourceId":"a"}`)

	s.Equal(nethttp.StatusInternalServerError, code)
	s.Equal(false, body["success"])
}

func (s *ServerTestSuite) TestSubmitJob_PanicRecovered() {
	s.jobs.panicOnRun = true

	code, body := s.do(nethttp.MethodPost, "/api/fetch", `{"platform":"youtube","sourceId":"a"}`)

	s.Equal(nethttp.StatusInternalServerError, code)
	s.Equal(false, body["success"])
}

func (s *ServerTestSuite) TestListJobs_WithFilter() {
	s.jobs.listResult = []domain.FetchJob{{Platform: domain.PlatformX, SourceID: "someone", Status: domain.StatusCompleted}}

	code, body := s.do(nethttp.MethodGet, "/api/fetch?platform=x", "")

	s.Equal(nethttp.StatusOK, code)
	s.Equal(true, body["success"])
	s.Len(body["jobs"], 1)
	s.Require().NotNil(s.jobs.listFilter)
	s.Equal(domain.PlatformX, *s.jobs.listFilter)
}

func (s *ServerTestSuite) TestListJobs_NoFilterReturnsEmptyArray() {
	code, body := s.do(nethttp.MethodGet, "/api/fetch", "")

	s.Equal(nethttp.StatusOK, code)
	s.Nil(s.jobs.listFilter)
	s.Equal([]any{}, body["jobs"])
}

func (s *ServerTestSuite) TestListJobs_InvalidPlatform() {
	s.jobs.listErr = &domain.ValidationError{Field: "platform", Reason: "unknown platform"}

	code, body := s.do(nethttp.MethodGet, "/api/fetch?platform=myspace", "")

	s.Equal(nethttp.StatusBadRequest, code)
	s.Equal(false, body["success"])
}

func (s *ServerTestSuite) TestPlatforms() {
	s.jobs.platforms = []service.PlatformStatus{
		{Platform: domain.PlatformTelegram, Healthy: true},
		{Platform: domain.PlatformTikTok, Healthy: false},
	}

	code, body := s.do(nethttp.MethodGet, "/api/platforms", "")

	s.Equal(nethttp.StatusOK, code)
	s.Len(body["platforms"], 2)
}

func (s *ServerTestSuite) TestHealth() {
	code, body := s.do(nethttp.MethodGet, "/health", "")

	s.Equal(nethttp.StatusOK, code)
	s.Equal("ok", body["status"])
}
