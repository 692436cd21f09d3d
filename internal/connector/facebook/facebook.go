// Package facebook reads public page posts through the Graph API with an app access token.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"content_fetcher/internal/connector"
	"content_fetcher/internal/connector/apiclient"
	"content_fetcher/internal/domain"
)

const (
	DefaultBaseURL = "https://graph.facebook.com/v19.0"
	maxPageSize    = 100
	postFields     = "id,message,created_time,full_picture,permalink_url," +
		"attachments{media_type,url,media,subattachments},reactions.summary(true).limit(0),comments.summary(true).limit(0),shares"
)

type Config struct {
	AppID     string
	AppSecret string
	BaseURL   string
	PageDelay time.Duration
	Client    apiclient.Config
}

type Connector struct {
	client    *apiclient.Client
	baseURL   string
	token     string
	pageDelay time.Duration
	logger    *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Connector, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("facebook: app id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	logger = logger.With("platform", domain.PlatformFacebook)
	return &Connector{
		client:    apiclient.New(cfg.Client, logger),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.AppID + "|" + cfg.AppSecret,
		pageDelay: cfg.PageDelay,
		logger:    logger,
	}, nil
}

func (c *Connector) Platform() domain.Platform {
	return domain.PlatformFacebook
}

func (c *Connector) FetchContent(ctx context.Context, sourceID string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	info, err := c.GetSourceInfo(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.NewSourceError(domain.PlatformFacebook, "fetch", fmt.Errorf("page %q not found", sourceID))
	}

	limit := maxPageSize
	if opts.MaxItems > 0 {
		limit = min(opts.MaxItems, maxPageSize)
	}
	params := url.Values{
		"fields": {postFields},
		"limit":  {strconv.Itoa(limit)},
	}
	if opts.Since != nil {
		params.Set("since", strconv.FormatInt(opts.Since.Unix(), 10))
	}
	next := c.endpoint(info.ID+"/posts", params)

	pager := connector.NewPager(opts.MaxItems)
	for pager.Next(ctx) {
		var resp postsResponse
		if err := c.get(ctx, next, &resp); err != nil {
			return pager.Items(), domain.NewSourceError(domain.PlatformFacebook, "fetch", err)
		}

		items := make([]domain.ContentItem, 0, len(resp.Data))
		for i := range resp.Data {
			if item, ok := transformPost(&resp.Data[i], info); ok {
				items = append(items, item)
			}
		}
		pager.Add(items)

		if resp.Paging.Next == "" {
			break
		}
		next = resp.Paging.Next

		select {
		case <-ctx.Done():
		case <-time.After(c.pageDelay):
		}
	}

	if err := ctx.Err(); err != nil {
		return pager.Items(), domain.NewSourceError(domain.PlatformFacebook, "fetch", err)
	}
	return pager.Items(), nil
}

// SearchContent looks the query up as a page name and fetches the best match.
// When page search is unavailable to the app token or finds nothing, the query
// is treated as a page id instead.
func (c *Connector) SearchContent(ctx context.Context, query string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	params := url.Values{"q": {query}, "fields": {"id,name"}, "limit": {"1"}}

	var resp pagesSearchResponse
	err := c.get(ctx, c.endpoint("pages/search", params), &resp)
	if err == nil && len(resp.Data) > 0 && resp.Data[0].ID != "" {
		return c.FetchContent(ctx, resp.Data[0].ID, opts)
	}

	c.logger.Warn("page search unavailable, treating query as page id", "query", query, "error", err)
	return c.FetchContent(ctx, query, opts)
}

// GetSourceInfo returns nil when the Graph API reports an error for the page.
func (c *Connector) GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error) {
	params := url.Values{"fields": {"id,name,link,fan_count,picture{url}"}}

	var p page
	if err := c.get(ctx, c.endpoint(url.PathEscape(sourceID), params), &p); err != nil {
		var ge *graphAPIError
		if errors.As(err, &ge) {
			c.logger.Debug("page lookup failed", "source_id", sourceID, "error", err)
			return nil, nil
		}
		return nil, domain.NewSourceError(domain.PlatformFacebook, "source info", err)
	}
	if p.ID == "" {
		return nil, nil
	}

	info := &domain.SourceInfo{
		ID:              p.ID,
		Name:            p.Name,
		URL:             p.Link,
		SubscriberCount: p.FanCount,
	}
	if info.URL == "" {
		info.URL = "https://www.facebook.com/" + p.ID
	}
	if p.Picture != nil {
		info.AvatarURL = p.Picture.Data.URL
	}
	return info, nil
}

func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	var app struct {
		ID string `json:"id"`
	}
	if err := c.get(ctx, c.endpoint("app", nil), &app); err != nil {
		c.logger.Warn("credential check failed", "error", err)
		return false
	}
	return app.ID != ""
}

type graphAPIError struct {
	code    int
	message string
}

func (e *graphAPIError) Error() string {
	return fmt.Sprintf("graph api error %d: %s", e.code, e.message)
}

func (c *Connector) endpoint(path string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("access_token", c.token)
	return c.baseURL + "/" + path + "?" + q.Encode()
}

// get decodes a Graph response, turning an "error" body into *graphAPIError.
func (c *Connector) get(ctx context.Context, endpoint string, out any) error {
	var raw json.RawMessage
	err := c.client.GetJSON(ctx, endpoint, &raw)

	var se *apiclient.StatusError
	switch {
	case errors.As(err, &se):
		raw = se.Body
	case err != nil:
		return errors.New(strings.ReplaceAll(err.Error(), url.QueryEscape(c.token), "<token>"))
	}

	var ge graphError
	if json.Unmarshal(raw, &ge) == nil && ge.Error != nil {
		return &graphAPIError{code: ge.Error.Code, message: ge.Error.Message}
	}
	if se != nil {
		return se
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
