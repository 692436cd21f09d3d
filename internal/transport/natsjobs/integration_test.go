//go:build integration

package natsjobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/suite"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"

	"content_fetcher/internal/domain"
)

type NATSIntegrationSuite struct {
	suite.Suite
	container *tcnats.NATSContainer
	nc        *nats.Conn
	ctx       context.Context
}

func (s *NATSIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcnats.Run(s.ctx, "nats:2.10")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)

	nc, err := nats.Connect(url)
	s.Require().NoError(err)
	s.nc = nc
}

func (s *NATSIntegrationSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func TestNATSIntegrationSuite(t *testing.T) {
	suite.Run(t, new(NATSIntegrationSuite))
}

func (s *NATSIntegrationSuite) TestRequestReply() {
	jobs := &fakeJobs{result: &domain.JobResult{
		RunID:    "run-1",
		Platform: domain.PlatformFacebook,
		SourceID: "page",
		Status:   domain.StatusCompleted,
	}}
	sub := NewSubscriber(jobs, Config{Subject: "jobs.fetch", Queue: "fetchers"}, testLogger())
	s.Require().NoError(sub.Subscribe(s.nc))
	defer sub.Drain()

	msg, err := s.nc.Request("jobs.fetch", []byte(`{"platform":"facebook","sourceId":"page"}`), 5*time.Second)
	s.Require().NoError(err)

	var reply domain.JobResponse
	s.Require().NoError(json.Unmarshal(msg.Data, &reply))
	s.True(reply.Success)
	s.Equal("run-1", reply.RunID)
	s.Equal(domain.StatusCompleted, reply.Status)
}
