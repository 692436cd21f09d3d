package natsjobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/transport"
)

type Config struct {
	Subject    string
	Queue      string
	JobTimeout time.Duration
}

// Subscriber takes fetch jobs over NATS request/reply. Every instance joins the
// same queue group, so each request is served once.
type Subscriber struct {
	jobs      transport.Jobs
	validator *transport.Validator
	cfg       Config
	logger    *slog.Logger
	sub       *nats.Subscription
}

func NewSubscriber(jobs transport.Jobs, cfg Config, logger *slog.Logger) *Subscriber {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &Subscriber{
		jobs:      jobs,
		validator: transport.NewValidator(),
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *Subscriber) Subscribe(nc *nats.Conn) error {
	sub, err := nc.QueueSubscribe(s.cfg.Subject, s.cfg.Queue, func(msg *nats.Msg) {
		reply := s.Handle(msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			s.logger.Error("failed to reply to job request", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.cfg.Subject, err)
	}
	s.sub = sub

	s.logger.Info("nats job intake subscribed", "subject", s.cfg.Subject, "queue", s.cfg.Queue)
	return nil
}

func (s *Subscriber) Drain() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}

// Handle runs one job request and returns the JSON reply.
func (s *Subscriber) Handle(data []byte) []byte {
	var req transport.FetchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return s.encode(transport.NewErrorResponse(&domain.ValidationError{Field: "body", Reason: err.Error()}))
	}
	if err := s.validator.Validate(req); err != nil {
		return s.encode(transport.NewErrorResponse(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	result, err := s.jobs.Run(ctx, req.Spec())
	if err != nil {
		if !transport.IsClientError(err) {
			s.logger.Error("job request failed", "platform", req.Platform, "error", err)
		}
		return s.encode(transport.NewErrorResponse(err))
	}
	return s.encode(result.Response())
}

func (s *Subscriber) encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode job reply", "error", err)
		return []byte(`{"success":false,"error":"internal error"}`)
	}
	return data
}
