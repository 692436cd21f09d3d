package main

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"content_fetcher/internal/browser"
	"content_fetcher/internal/config"
	"content_fetcher/internal/connector"
	"content_fetcher/internal/connector/apiclient"
	"content_fetcher/internal/connector/facebook"
	"content_fetcher/internal/connector/instagram"
	"content_fetcher/internal/connector/telegram"
	"content_fetcher/internal/connector/tiktok"
	"content_fetcher/internal/connector/x"
	"content_fetcher/internal/connector/youtube"
	"content_fetcher/internal/domain"
)

// buildRegistry creates a connector for every enabled platform. API platforms
// without credentials are skipped with a warning.
func buildRegistry(ctx context.Context, cfg *config.Config, pool *browser.Pool, rdb redis.UniversalClient, logger *slog.Logger) (*connector.Registry, error) {
	clientCfg := apiclient.Config{
		Timeout:        cfg.Connectors.HTTP.Timeout,
		MaxAttempts:    cfg.Connectors.HTTP.Retry.MaxAttempts,
		InitialBackoff: cfg.Connectors.HTTP.Retry.InitialBackoff,
		MaxBackoff:     cfg.Connectors.HTTP.Retry.MaxBackoff,
	}
	creds := cfg.Credentials

	var conns []connector.Connector

	if cfg.PlatformEnabled(domain.PlatformYouTube) {
		if creds.YouTubeAPIKey == "" {
			logger.Warn("youtube connector disabled: YOUTUBE_API_KEY not set")
		} else {
			yt, err := youtube.New(ctx, youtube.Config{
				APIKey:    creds.YouTubeAPIKey,
				Endpoint:  cfg.Connectors.YouTube.Endpoint,
				Timeout:   cfg.Connectors.HTTP.Timeout,
				PageDelay: cfg.Connectors.PageDelay,
			}, logger)
			if err != nil {
				return nil, err
			}
			conns = append(conns, yt)
		}
	}

	if cfg.PlatformEnabled(domain.PlatformTelegram) {
		if creds.TelegramBotToken == "" {
			logger.Warn("telegram connector disabled: TELEGRAM_BOT_TOKEN not set")
		} else {
			tg, err := telegram.New(telegram.Config{
				Token:   creds.TelegramBotToken,
				BaseURL: cfg.Connectors.Telegram.BaseURL,
				Client:  clientCfg,
			}, logger)
			if err != nil {
				return nil, err
			}
			conns = append(conns, tg)
		}
	}

	if cfg.PlatformEnabled(domain.PlatformFacebook) {
		if creds.FacebookAppID == "" || creds.FacebookAppSecret == "" {
			logger.Warn("facebook connector disabled: FACEBOOK_APP_ID or FACEBOOK_APP_SECRET not set")
		} else {
			fb, err := facebook.New(facebook.Config{
				AppID:     creds.FacebookAppID,
				AppSecret: creds.FacebookAppSecret,
				BaseURL:   cfg.Connectors.Facebook.BaseURL,
				PageDelay: cfg.Connectors.PageDelay,
				Client:    clientCfg,
			}, logger)
			if err != nil {
				return nil, err
			}
			conns = append(conns, fb)
		}
	}

	if cfg.PlatformEnabled(domain.PlatformTikTok) {
		conns = append(conns, tiktok.New(pool, logger))
	}
	if cfg.PlatformEnabled(domain.PlatformInstagram) {
		conns = append(conns, instagram.New(pool, logger))
	}
	if cfg.PlatformEnabled(domain.PlatformX) {
		conns = append(conns, x.New(pool, x.Config{Instances: cfg.Connectors.X.Instances}, logger))
	}

	if rdb != nil {
		for i, c := range conns {
			conns[i] = connector.WithSourceInfoCache(c, rdb, cfg.Redis.SourceInfoTTL, logger)
		}
	}

	return connector.NewRegistry(conns...)
}
