//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"content_fetcher/internal/domain"
	"content_fetcher/testdata/utils"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "content-" + name,
		RoutingKey: "content." + name,
		QueueName:  "content-queue-" + name,
	}
}

func testItem(id string) *domain.ContentItem {
	return &domain.ContentItem{
		Platform:   domain.PlatformTelegram,
		PlatformID: id,
		Type:       domain.ContentText,
		Title:      "Breaking",
		ContentURL: "https://t.me/kannews/" + id,
		Metrics:    domain.Metrics{Views: utils.Ptr(int64(1500))},
		Tags:       []string{"חדשות"},
		Language:   "he",
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("conn"), s.logger)
	s.Require().NoError(err)
	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishCreate() {
	cfg := s.config("create")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.Require().NoError(pub.Publish(s.ctx, testItem("42"), domain.OutcomeInserted))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)
	s.Equal("telegram_42", msg.MessageId)
	s.Equal("telegram", msg.Headers["platform"])

	var received ContentMessage
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal(ActionCreate, received.Action)
	s.Equal("42", received.Content.PlatformID)
	s.Equal(int64(1500), *received.Content.Metrics.Views)
	s.Equal([]string{"חדשות"}, received.Content.Tags)
	s.Require().NotNil(received.Site)
	s.True(received.Site.IsActive)
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishUpdate() {
	cfg := s.config("update")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.Require().NoError(pub.Publish(s.ctx, testItem("43"), domain.OutcomeUpdated))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var received ContentMessage
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal(ActionUpdate, received.Action)
	s.Nil(received.Site)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_ConcurrentPublish() {
	cfg := s.config("concurrent")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.NoError(pub.Publish(s.ctx, testItem(string(rune('a'+i))), domain.OutcomeInserted))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		s.Require().NotNil(s.consumeMessage(cfg))
	}
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msg, ok, err := ch.Get(cfg.QueueName, true)
		s.Require().NoError(err)
		if ok {
			return &msg
		}
		time.Sleep(50 * time.Millisecond)
	}
	s.Fail("timeout waiting for message")
	return nil
}
