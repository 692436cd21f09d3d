// Package tiktok scrapes public profiles and video search through a headless browser.
package tiktok

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"content_fetcher/internal/connector"
	"content_fetcher/internal/domain"
)

const (
	baseURL = "https://www.tiktok.com"
	// Each scroll reveals roughly this many tiles.
	itemsPerScroll = 10
)

type Connector struct {
	renderer connector.Renderer
	now      func() time.Time
	logger   *slog.Logger
}

func New(renderer connector.Renderer, logger *slog.Logger) *Connector {
	return &Connector{
		renderer: renderer,
		now:      time.Now,
		logger:   logger.With("platform", domain.PlatformTikTok),
	}
}

func (c *Connector) Platform() domain.Platform {
	return domain.PlatformTikTok
}

func (c *Connector) FetchContent(ctx context.Context, sourceID string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	username := strings.TrimPrefix(sourceID, "@")
	now := c.now()

	items, err := connector.Scrape(ctx, c.renderer, profileURL(username), opts, maxScrolls(opts.MaxItems),
		func(doc *goquery.Document) ([]domain.ContentItem, bool) {
			return parseProfileItems(doc, username, now), false
		})
	if err != nil {
		return items, domain.NewSourceError(domain.PlatformTikTok, "fetch", err)
	}
	return items, nil
}

func (c *Connector) SearchContent(ctx context.Context, query string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	now := c.now()
	target := baseURL + "/search/video?q=" + url.QueryEscape(query)

	items, err := connector.Scrape(ctx, c.renderer, target, opts, maxScrolls(opts.MaxItems),
		func(doc *goquery.Document) ([]domain.ContentItem, bool) {
			return parseSearchItems(doc, now), false
		})
	if err != nil {
		return items, domain.NewSourceError(domain.PlatformTikTok, "search", err)
	}
	return items, nil
}

func (c *Connector) GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error) {
	username := strings.TrimPrefix(sourceID, "@")

	var info *domain.SourceInfo
	err := c.renderer.Render(ctx, profileURL(username), func(html string) bool {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil {
			info = parseProfileInfo(doc, username)
		}
		return false
	})
	if err != nil {
		return nil, domain.NewSourceError(domain.PlatformTikTok, "source info", err)
	}
	return info, nil
}

// ValidateCredentials checks that a browser session can load the site. No credentials are involved.
func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	err := c.renderer.Render(ctx, baseURL, func(string) bool { return false })
	if err != nil {
		c.logger.Warn("browser check failed", "error", err)
		return false
	}
	return true
}

func profileURL(username string) string {
	return baseURL + "/@" + username
}

func maxScrolls(maxItems int) int {
	if maxItems <= 0 {
		return 0
	}
	return (maxItems+itemsPerScroll-1)/itemsPerScroll + 1
}
