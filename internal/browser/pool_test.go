package browser

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type fakeInstance struct {
	pages  []string
	closed atomic.Bool
}

func (f *fakeInstance) render(ctx context.Context, url string, visit func(string) bool) error {
	for _, html := range f.pages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !visit(html) {
			return nil
		}
	}
	return nil
}

func (f *fakeInstance) close() error {
	f.closed.Store(true)
	return nil
}

type PoolTestSuite struct {
	suite.Suite
	dir       string
	logger    *slog.Logger
	mu        sync.Mutex
	instances []*fakeInstance
	launchErr error
}

func (s *PoolTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.instances = nil
	s.launchErr = nil
}

func TestPoolTestSuite(t *testing.T) {
	suite.Run(t, new(PoolTestSuite))
}

func (s *PoolTestSuite) newPool(max int) *Pool {
	cfg := Config{ProfileDir: s.dir, MaxSessions: max}
	return newPool(cfg, func(ctx context.Context, profileDir string) (instance, error) {
		if s.launchErr != nil {
			return nil, s.launchErr
		}
		inst := &fakeInstance{pages: []string{"<p>1</p>", "<p>2</p>", "<p>3</p>"}}
		s.mu.Lock()
		s.instances = append(s.instances, inst)
		s.mu.Unlock()
		return inst, nil
	}, s.logger)
}

func (s *PoolTestSuite) profileCount() int {
	entries, err := os.ReadDir(s.dir)
	s.Require().NoError(err)
	return len(entries)
}

func (s *PoolTestSuite) TestDo_ReleasesOnSuccess() {
	pool := s.newPool(1)

	var seen []string
	err := pool.Render(context.Background(), "https://example.com", func(html string) bool {
		seen = append(seen, html)
		return len(seen) < 2
	})

	s.NoError(err)
	s.Len(seen, 2)
	s.Require().Len(s.instances, 1)
	s.True(s.instances[0].closed.Load())
	s.Equal(0, s.profileCount())
	s.Len(pool.sem, 0)
}

func (s *PoolTestSuite) TestDo_ReleasesOnError() {
	pool := s.newPool(1)
	boom := errors.New("scrape failed")

	err := pool.Do(context.Background(), func(*Session) error { return boom })

	s.ErrorIs(err, boom)
	s.True(s.instances[0].closed.Load())
	s.Equal(0, s.profileCount())
	s.Len(pool.sem, 0)
}

func (s *PoolTestSuite) TestDo_ReleasesOnPanic() {
	pool := s.newPool(1)

	s.Panics(func() {
		_ = pool.Do(context.Background(), func(*Session) error { panic("selector blew up") })
	})

	s.True(s.instances[0].closed.Load())
	s.Len(pool.sem, 0)
}

func (s *PoolTestSuite) TestRelease_Idempotent() {
	pool := s.newPool(2)

	sess, err := pool.Acquire(context.Background())
	s.Require().NoError(err)

	sess.Release()
	sess.Release()

	s.Len(pool.sem, 0)
}

func (s *PoolTestSuite) TestAcquire_LaunchFailureFreesSlot() {
	pool := s.newPool(1)
	s.launchErr = errors.New("no chromium")

	_, err := pool.Acquire(context.Background())

	s.ErrorContains(err, "no chromium")
	s.Len(pool.sem, 0)
	s.Equal(0, s.profileCount())
}

func (s *PoolTestSuite) TestAcquire_BlocksAtCapacity() {
	pool := s.newPool(1)

	held, err := pool.Acquire(context.Background())
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)

	held.Release()
	again, err := pool.Acquire(context.Background())
	s.Require().NoError(err)
	again.Release()
}

func (s *PoolTestSuite) TestConcurrentSessionsNeverExceedLimit() {
	pool := s.newPool(2)

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Do(context.Background(), func(*Session) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	s.LessOrEqual(peak.Load(), int32(2))
	s.Len(s.instances, 8)
}

func (s *PoolTestSuite) TestClose_RejectsNewSessions() {
	pool := s.newPool(1)
	pool.Close()

	_, err := pool.Acquire(context.Background())
	s.ErrorIs(err, ErrPoolClosed)
	s.Len(pool.sem, 0)
}
