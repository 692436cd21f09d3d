package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_fetcher/internal/domain"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "jobs.fetch", cfg.NATS.Subject)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.JobTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SourceInfoTTL)
	assert.True(t, *cfg.Browser.Headless)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, os.TempDir(), cfg.Browser.ProfileDir)
	assert.True(t, cfg.PlatformEnabled(domain.PlatformTikTok))
}

func TestParse_ExpandsEnvAndReadsCredentials(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Parse([]byte(`
database:
  host: db
  password: ${DB_PASSWORD}
browser:
  headless: false
connectors:
  enabled: [youtube, telegram]
scheduler:
  interval: 10m
  jobs:
    - platform: youtube
      source_id: UC123
      max_items: 50
    - platform: telegram
      search_query: חדשות
`))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
	assert.Equal(t, "yt-key", cfg.Credentials.YouTubeAPIKey)
	assert.Equal(t, "123:abc", cfg.Credentials.TelegramBotToken)
	assert.False(t, *cfg.Browser.Headless)
	assert.True(t, cfg.PlatformEnabled(domain.PlatformYouTube))
	assert.False(t, cfg.PlatformEnabled(domain.PlatformX))

	require.Len(t, cfg.Scheduler.Jobs, 2)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, domain.JobSpec{Platform: domain.PlatformYouTube, SourceID: "UC123", MaxItems: 50}, cfg.Scheduler.Jobs[0])
	assert.Equal(t, domain.ModeSearch, cfg.Scheduler.Jobs[1].Mode())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown driver", "storage:\n  driver: sqlite\n"},
		{"mongo without uri", "storage:\n  driver: mongo\n"},
		{"unknown enabled platform", "connectors:\n  enabled: [myspace]\n"},
		{"job without source", "scheduler:\n  jobs:\n    - platform: youtube\n"},
		{"bad yaml", "database: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
