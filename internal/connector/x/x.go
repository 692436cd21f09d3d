// Package x reads public X timelines through Nitter mirrors. Instances are
// tried round-robin; a failing instance hands over to the next one.
package x

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"content_fetcher/internal/connector"
	"content_fetcher/internal/domain"
)

const itemsPerScroll = 20

var DefaultInstances = []string{
	"https://nitter.poast.org",
	"https://nitter.privacydev.net",
	"https://nitter.woodland.cafe",
}

type Config struct {
	Instances []string
}

type Connector struct {
	renderer  connector.Renderer
	instances []string
	next      atomic.Uint32
	now       func() time.Time
	logger    *slog.Logger
}

func New(renderer connector.Renderer, cfg Config, logger *slog.Logger) *Connector {
	instances := cfg.Instances
	if len(instances) == 0 {
		instances = DefaultInstances
	}
	trimmed := make([]string, len(instances))
	for i, in := range instances {
		trimmed[i] = strings.TrimRight(in, "/")
	}
	return &Connector{
		renderer:  renderer,
		instances: trimmed,
		now:       time.Now,
		logger:    logger.With("platform", domain.PlatformX),
	}
}

func (c *Connector) Platform() domain.Platform {
	return domain.PlatformX
}

func (c *Connector) FetchContent(ctx context.Context, sourceID string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	username := strings.TrimPrefix(sourceID, "@")

	var items []domain.ContentItem
	err := c.withInstance(ctx, func(instance string) error {
		var err error
		items, err = connector.Scrape(ctx, c.renderer, instance+"/"+username, opts, maxScrolls(opts.MaxItems),
			func(doc *goquery.Document) ([]domain.ContentItem, bool) {
				return parseTimeline(doc, instance, c.now()), false
			})
		return err
	})
	if err != nil {
		return items, domain.NewSourceError(domain.PlatformX, "fetch", err)
	}
	return items, nil
}

func (c *Connector) SearchContent(ctx context.Context, query string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	var items []domain.ContentItem
	err := c.withInstance(ctx, func(instance string) error {
		target := instance + "/search?f=tweets&q=" + url.QueryEscape(query)
		var err error
		items, err = connector.Scrape(ctx, c.renderer, target, opts, maxScrolls(opts.MaxItems),
			func(doc *goquery.Document) ([]domain.ContentItem, bool) {
				return parseTimeline(doc, instance, c.now()), false
			})
		return err
	})
	if err != nil {
		return items, domain.NewSourceError(domain.PlatformX, "search", err)
	}
	return items, nil
}

func (c *Connector) GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error) {
	username := strings.TrimPrefix(sourceID, "@")

	var info *domain.SourceInfo
	err := c.withInstance(ctx, func(instance string) error {
		return c.renderer.Render(ctx, instance+"/"+username, func(html string) bool {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
			if err == nil {
				info = parseProfile(doc, instance, username)
			}
			return false
		})
	})
	if err != nil {
		return nil, domain.NewSourceError(domain.PlatformX, "source info", err)
	}
	return info, nil
}

// ValidateCredentials reports whether at least one instance is reachable.
func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	err := c.withInstance(ctx, func(instance string) error {
		return c.renderer.Render(ctx, instance, func(string) bool { return false })
	})
	if err != nil {
		c.logger.Warn("no nitter instance reachable", "error", err)
		return false
	}
	return true
}

// withInstance runs fn against each instance in turn, starting at the
// round-robin cursor, until one succeeds.
func (c *Connector) withInstance(ctx context.Context, fn func(instance string) error) error {
	start := int(c.next.Add(1)-1) % len(c.instances)

	var errs []error
	for i := range c.instances {
		if err := ctx.Err(); err != nil {
			return err
		}
		instance := c.instances[(start+i)%len(c.instances)]
		err := fn(instance)
		if err == nil {
			return nil
		}
		c.logger.Warn("nitter instance failed", "instance", instance, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", instance, err))
	}
	return errors.Join(errs...)
}

func maxScrolls(maxItems int) int {
	if maxItems <= 0 {
		return 0
	}
	return (maxItems+itemsPerScroll-1)/itemsPerScroll + 1
}
