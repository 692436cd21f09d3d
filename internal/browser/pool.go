// Package browser manages headless Chromium sessions for scraping connectors.
// Each session gets its own profile directory and is released on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const ProfilePrefix = "cf_profile_"

var ErrPoolClosed = errors.New("browser pool closed")

type Config struct {
	BinPath     string
	ProfileDir  string
	Headless    bool
	MaxSessions int
	NavTimeout  time.Duration
	ScrollDelay time.Duration
}

// instance is one running browser process.
type instance interface {
	render(ctx context.Context, url string, visit func(html string) bool) error
	close() error
}

type launchFunc func(ctx context.Context, profileDir string) (instance, error)

type Pool struct {
	cfg    Config
	sem    chan struct{}
	launch launchFunc
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewPool(cfg Config, logger *slog.Logger) *Pool {
	if cfg.MaxSessions < 1 {
		cfg.MaxSessions = 1
	}
	if cfg.ProfileDir == "" {
		cfg.ProfileDir = os.TempDir()
	}
	if cfg.NavTimeout == 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.ScrollDelay == 0 {
		cfg.ScrollDelay = 2 * time.Second
	}
	return newPool(cfg, launchRod(cfg), logger)
}

func newPool(cfg Config, launch launchFunc, logger *slog.Logger) *Pool {
	return &Pool{
		cfg:    cfg,
		sem:    make(chan struct{}, cfg.MaxSessions),
		launch: launch,
		logger: logger.With("component", "browser_pool"),
	}
}

// Session is a leased browser. Release must be called once the caller is done;
// calling it more than once is safe.
type Session struct {
	inst       instance
	profileDir string
	release    func()
	once       sync.Once
}

// Acquire blocks until a session slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		<-p.sem
		return nil, ErrPoolClosed
	}

	dir := filepath.Join(p.cfg.ProfileDir, ProfilePrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		<-p.sem
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	inst, err := p.launch(ctx, dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		<-p.sem
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	p.logger.Debug("browser session acquired", "profile", dir)

	s := &Session{inst: inst, profileDir: dir}
	s.release = func() {
		if err := inst.close(); err != nil {
			p.logger.Warn("close browser", "profile", dir, "error", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("remove profile", "profile", dir, "error", err)
		}
		<-p.sem
		p.logger.Debug("browser session released", "profile", dir)
	}
	return s, nil
}

func (s *Session) Release() {
	s.once.Do(s.release)
}

// Render opens url and hands the page HTML to visit after the initial load
// and after every scroll, until visit returns false or ctx is done.
func (s *Session) Render(ctx context.Context, url string, visit func(html string) bool) error {
	return s.inst.render(ctx, url, visit)
}

// Do runs fn with a leased session and releases it whatever fn does.
func (p *Pool) Do(ctx context.Context, fn func(s *Session) error) error {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.Release()

	return fn(s)
}

// Render is Do plus Session.Render in one call.
func (p *Pool) Render(ctx context.Context, url string, visit func(html string) bool) error {
	return p.Do(ctx, func(s *Session) error {
		return s.Render(ctx, url, visit)
	})
}

// Close stops new acquisitions. Sessions already leased are unaffected.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
