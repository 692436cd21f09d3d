// Package youtube reads channel uploads and search results through the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"content_fetcher/internal/connector"
	"content_fetcher/internal/domain"
)

const (
	maxPageSize = 50
	// Google Developers channel, used only as a credential probe.
	probeChannelID = "UC_x5XG1OV2P6uZZ5FSM9Ttw"
)

type Config struct {
	APIKey    string
	Endpoint  string
	Timeout   time.Duration
	PageDelay time.Duration
}

type Connector struct {
	svc       *yt.Service
	timeout   time.Duration
	pageDelay time.Duration
	logger    *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Connector, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube: api key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Connector{
		svc:       svc,
		timeout:   cfg.Timeout,
		pageDelay: cfg.PageDelay,
		logger:    logger.With("platform", domain.PlatformYouTube),
	}, nil
}

func (c *Connector) Platform() domain.Platform {
	return domain.PlatformYouTube
}

// FetchContent reads the uploads playlist of a channel id or @handle, newest first.
func (c *Connector) FetchContent(ctx context.Context, sourceID string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	uploads, err := c.uploadsPlaylist(ctx, sourceID)
	if err != nil {
		return nil, domain.NewSourceError(domain.PlatformYouTube, "fetch", err)
	}
	if uploads == "" {
		return nil, domain.NewSourceError(domain.PlatformYouTube, "fetch", fmt.Errorf("channel %q not found", sourceID))
	}

	pager := connector.NewPager(opts.MaxItems)
	pageToken := ""

	for pager.Next(ctx) {
		rctx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(uploads).
			MaxResults(pageSize(opts.MaxItems, len(pager.Items()))).
			PageToken(pageToken).
			Context(rctx).
			Do()
		cancel()
		if err != nil {
			return pager.Items(), domain.NewSourceError(domain.PlatformYouTube, "fetch", fmt.Errorf("list playlist items: %w", err))
		}

		ids := make([]string, 0, len(resp.Items))
		for _, it := range resp.Items {
			if it.ContentDetails != nil && it.ContentDetails.VideoId != "" {
				ids = append(ids, it.ContentDetails.VideoId)
			}
		}

		items, err := c.videos(ctx, ids)
		if err != nil {
			return pager.Items(), domain.NewSourceError(domain.PlatformYouTube, "fetch", err)
		}

		reachedSince := false
		if opts.Since != nil {
			items, reachedSince = filterSince(items, *opts.Since)
		}

		pager.Add(items)
		c.logger.Debug("fetched page", "source_id", sourceID, "videos", len(ids), "total", len(pager.Items()))

		if resp.NextPageToken == "" || reachedSince {
			pager.Stop()
			break
		}
		pageToken = resp.NextPageToken

		if err := c.sleep(ctx); err != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return pager.Items(), domain.NewSourceError(domain.PlatformYouTube, "fetch", err)
	}
	return pager.Items(), nil
}

// SearchContent runs a video search biased to Hebrew results, newest first.
func (c *Connector) SearchContent(ctx context.Context, query string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	pager := connector.NewPager(opts.MaxItems)
	pageToken := ""

	for pager.Next(ctx) {
		call := c.svc.Search.List([]string{"id"}).
			Q(query).
			Type("video").
			RelevanceLanguage("he").
			Order("date").
			MaxResults(pageSize(opts.MaxItems, len(pager.Items()))).
			PageToken(pageToken)
		if opts.Since != nil {
			call = call.PublishedAfter(opts.Since.UTC().Format(time.RFC3339))
		}

		rctx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := call.Context(rctx).Do()
		cancel()
		if err != nil {
			return pager.Items(), domain.NewSourceError(domain.PlatformYouTube, "search", fmt.Errorf("search videos: %w", err))
		}

		ids := make([]string, 0, len(resp.Items))
		for _, r := range resp.Items {
			if r.Id != nil && r.Id.VideoId != "" {
				ids = append(ids, r.Id.VideoId)
			}
		}

		items, err := c.videos(ctx, ids)
		if err != nil {
			return pager.Items(), domain.NewSourceError(domain.PlatformYouTube, "search", err)
		}
		pager.Add(items)

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken

		if err := c.sleep(ctx); err != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return pager.Items(), domain.NewSourceError(domain.PlatformYouTube, "search", err)
	}
	return pager.Items(), nil
}

func (c *Connector) GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error) {
	ch, err := c.channel(ctx, sourceID, "snippet", "statistics")
	if err != nil {
		return nil, domain.NewSourceError(domain.PlatformYouTube, "source info", err)
	}
	if ch == nil {
		return nil, nil
	}

	info := &domain.SourceInfo{
		ID:  ch.Id,
		URL: "https://www.youtube.com/channel/" + ch.Id,
	}
	if ch.Snippet != nil {
		info.Name = ch.Snippet.Title
		if t := ch.Snippet.Thumbnails; t != nil && t.Default != nil {
			info.AvatarURL = t.Default.Url
		}
	}
	if ch.Statistics != nil && !ch.Statistics.HiddenSubscriberCount {
		n := int64(ch.Statistics.SubscriberCount)
		info.SubscriberCount = &n
	}
	return info, nil
}

func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.svc.Channels.List([]string{"id"}).Id(probeChannelID).Context(rctx).Do()
	if err != nil {
		c.logger.Warn("credential check failed", "error", err)
		return false
	}
	return true
}

func (c *Connector) uploadsPlaylist(ctx context.Context, sourceID string) (string, error) {
	ch, err := c.channel(ctx, sourceID, "contentDetails")
	if err != nil || ch == nil {
		return "", err
	}
	if ch.ContentDetails == nil || ch.ContentDetails.RelatedPlaylists == nil {
		return "", nil
	}
	return ch.ContentDetails.RelatedPlaylists.Uploads, nil
}

// channel resolves a channel id or an @handle. It returns nil when nothing matches.
func (c *Connector) channel(ctx context.Context, sourceID string, parts ...string) (*yt.Channel, error) {
	call := c.svc.Channels.List(parts)
	if handle, ok := strings.CutPrefix(sourceID, "@"); ok {
		call = call.ForHandle(handle)
	} else {
		call = call.Id(sourceID)
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := call.Context(rctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return resp.Items[0], nil
}

func (c *Connector) videos(ctx context.Context, ids []string) ([]domain.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Videos.List([]string{"snippet", "statistics"}).Id(ids...).Context(rctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	items := make([]domain.ContentItem, 0, len(resp.Items))
	for _, v := range resp.Items {
		item, ok := transform(v)
		if !ok {
			c.logger.Warn("skipping video without snippet or date", "video_id", v.Id)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Connector) sleep(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.pageDelay):
		return nil
	}
}

func pageSize(maxItems, have int) int64 {
	if maxItems <= 0 {
		return maxPageSize
	}
	return int64(min(maxPageSize, max(1, maxItems-have)))
}

// filterSince drops videos published before since. The second result reports
// whether any were dropped, which for a newest-first listing means the rest is older too.
func filterSince(items []domain.ContentItem, since time.Time) ([]domain.ContentItem, bool) {
	kept := items[:0]
	dropped := false
	for _, it := range items {
		if it.PublishedAt.Before(since) {
			dropped = true
			continue
		}
		kept = append(kept, it)
	}
	return kept, dropped
}
