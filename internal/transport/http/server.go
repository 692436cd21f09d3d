package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/transport"
)

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	JobTimeout   time.Duration
}

type Server struct {
	app       *fiber.App
	jobs      transport.Jobs
	validator *transport.Validator
	cfg       Config
	logger    *slog.Logger
}

func NewServer(jobs transport.Jobs, cfg Config, logger *slog.Logger) *Server {
	s := &Server{
		jobs:      jobs,
		validator: transport.NewValidator(),
		cfg:       cfg,
		logger:    logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "content-fetcher",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: s.handleError,
	})
	s.app.Use(requestid.New())
	s.app.Use(recover.New())

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	api := s.app.Group("/api")
	api.Post("/fetch", s.submitJob)
	api.Get("/fetch", s.listJobs)
	api.Get("/platforms", s.platforms)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) submitJob(c fiber.Ctx) error {
	var req transport.FetchRequest
	if err := c.Bind().Body(&req); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	ctx := c.Context()
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()
	}

	result, err := s.jobs.Run(ctx, req.Spec())
	if err != nil {
		return err
	}
	return c.JSON(result.Response())
}

func (s *Server) listJobs(c fiber.Ctx) error {
	var platform *domain.Platform
	if raw := c.Query("platform"); raw != "" {
		p := domain.Platform(raw)
		platform = &p
	}

	jobs, err := s.jobs.ListJobs(c.Context(), platform)
	if err != nil {
		return err
	}
	if jobs == nil {
		jobs = []domain.FetchJob{}
	}
	return c.JSON(transport.JobsResponse{Success: true, Jobs: jobs})
}

func (s *Server) platforms(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "platforms": s.jobs.Platforms(c.Context())})
}

func (s *Server) handleError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	switch {
	case transport.IsClientError(err):
		code = fiber.StatusBadRequest
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			"request_id", requestid.FromContext(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}

	return c.Status(code).JSON(transport.NewErrorResponse(err))
}
