// Package instagram scrapes public profile grids and hashtag pages. Anonymous
// sessions are often redirected to a login wall; the connector then returns
// no items rather than an error.
package instagram

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
	baseURL        = "https://www.instagram.com"
	itemsPerScroll = 12
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
		logger:   logger.With("platform", domain.PlatformInstagram),
	}
}

func (c *Connector) Platform() domain.Platform {
	return domain.PlatformInstagram
}

func (c *Connector) FetchContent(ctx context.Context, sourceID string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	username := strings.TrimPrefix(sourceID, "@")
	now := c.now()

	items, err := connector.Scrape(ctx, c.renderer, profileURL(username), opts, maxScrolls(opts.MaxItems),
		func(doc *goquery.Document) ([]domain.ContentItem, bool) {
			if loginWall(doc) {
				c.logger.Warn("login wall, no items collected", "source_id", username)
				return nil, true
			}
			owner := ownerFromDoc(doc, username)
			return parseGrid(doc, owner, owner.Name+" on Instagram", now), false
		})
	if err != nil {
		return items, domain.NewSourceError(domain.PlatformInstagram, "fetch", err)
	}
	return items, nil
}

// SearchContent treats the query as a hashtag.
func (c *Connector) SearchContent(ctx context.Context, query string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	tag := strings.TrimPrefix(strings.TrimSpace(query), "#")
	tag = strings.ReplaceAll(tag, " ", "")
	now := c.now()
	target := baseURL + "/explore/tags/" + url.PathEscape(tag) + "/"

	items, err := connector.Scrape(ctx, c.renderer, target, opts, maxScrolls(opts.MaxItems),
		func(doc *goquery.Document) ([]domain.ContentItem, bool) {
			if loginWall(doc) {
				c.logger.Warn("login wall, no items collected", "hashtag", tag)
				return nil, true
			}
			owner := domain.Author{ID: tag, Name: "#" + tag, Handle: tag, ProfileURL: target}
			return parseGrid(doc, owner, "#"+tag+" on Instagram", now), false
		})
	if err != nil {
		return items, domain.NewSourceError(domain.PlatformInstagram, "search", err)
	}
	return items, nil
}

func (c *Connector) GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error) {
	username := strings.TrimPrefix(sourceID, "@")

	var info *domain.SourceInfo
	err := c.renderer.Render(ctx, profileURL(username), func(html string) bool {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil && !loginWall(doc) {
			info = parseProfileInfo(doc, username)
		}
		return false
	})
	if err != nil {
		return nil, domain.NewSourceError(domain.PlatformInstagram, "source info", err)
	}
	return info, nil
}

func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	err := c.renderer.Render(ctx, baseURL, func(string) bool { return false })
	if err != nil {
		c.logger.Warn("browser check failed", "error", err)
		return false
	}
	return true
}

func profileURL(username string) string {
	return baseURL + "/" + username + "/"
}

func maxScrolls(maxItems int) int {
	if maxItems <= 0 {
		return 0
	}
	return (maxItems+itemsPerScroll-1)/itemsPerScroll + 1
}
