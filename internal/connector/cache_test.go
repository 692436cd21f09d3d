package connector

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"content_fetcher/internal/connector/mocks"
	"content_fetcher/internal/domain"
)

type SourceInfoCacheTestSuite struct {
	suite.Suite
	ctrl  *gomock.Controller
	mr    *miniredis.Miniredis
	rdb   *redis.Client
	inner *mocks.MockConnector
	cache *CachedSourceInfo
}

func (s *SourceInfoCacheTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s.inner = mocks.NewMockConnector(s.ctrl)
	s.inner.EXPECT().Platform().Return(domain.PlatformYouTube).AnyTimes()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.cache = WithSourceInfoCache(s.inner, s.rdb, time.Hour, logger)
}

func (s *SourceInfoCacheTestSuite) TearDownTest() {
	s.rdb.Close()
	s.mr.Close()
	s.ctrl.Finish()
}

func TestSourceInfoCacheTestSuite(t *testing.T) {
	suite.Run(t, new(SourceInfoCacheTestSuite))
}

func (s *SourceInfoCacheTestSuite) TestHitSkipsConnector() {
	ctx := context.Background()
	subs := int64(42)
	info := &domain.SourceInfo{ID: "UC1", Name: "Channel", URL: "https://youtube.com/channel/UC1", SubscriberCount: &subs}

	s.inner.EXPECT().GetSourceInfo(ctx, "UC1").Return(info, nil).Times(1)

	first, err := s.cache.GetSourceInfo(ctx, "UC1")
	s.Require().NoError(err)
	second, err := s.cache.GetSourceInfo(ctx, "UC1")
	s.Require().NoError(err)

	s.Equal(info, first)
	s.Equal(info, second)
	s.True(s.mr.Exists("sourceinfo:youtube:UC1"))
	s.Equal(time.Hour, s.mr.TTL("sourceinfo:youtube:UC1"))
}

func (s *SourceInfoCacheTestSuite) TestNilIsNotCached() {
	ctx := context.Background()
	s.inner.EXPECT().GetSourceInfo(ctx, "missing").Return(nil, nil).Times(2)

	info, err := s.cache.GetSourceInfo(ctx, "missing")
	s.NoError(err)
	s.Nil(info)

	_, _ = s.cache.GetSourceInfo(ctx, "missing")
	s.False(s.mr.Exists("sourceinfo:youtube:missing"))
}

func (s *SourceInfoCacheTestSuite) TestRedisDownFallsThrough() {
	ctx := context.Background()
	s.mr.SetError("ERR server unavailable")
	defer s.mr.SetError("")

	info := &domain.SourceInfo{ID: "UC2", Name: "Other"}
	s.inner.EXPECT().GetSourceInfo(ctx, "UC2").Return(info, nil)

	got, err := s.cache.GetSourceInfo(ctx, "UC2")
	s.NoError(err)
	s.Equal(info, got)
}

func (s *SourceInfoCacheTestSuite) TestCorruptEntryIsRefetched() {
	ctx := context.Background()
	s.Require().NoError(s.mr.Set("sourceinfo:youtube:UC3", "{not json"))

	info := &domain.SourceInfo{ID: "UC3", Name: "Fresh"}
	s.inner.EXPECT().GetSourceInfo(ctx, "UC3").Return(info, nil)

	got, err := s.cache.GetSourceInfo(ctx, "UC3")
	s.NoError(err)
	s.Equal("Fresh", got.Name)
}
