// Package telegram reads channel posts through the Bot API.
//
// A bot only sees updates delivered to it, so history is partial: FetchContent
// returns the channel posts still pending in getUpdates, and SearchContent is a
// text match over that same window rather than a platform-wide search.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"content_fetcher/internal/connector"
	"content_fetcher/internal/connector/apiclient"
	"content_fetcher/internal/domain"
	"content_fetcher/internal/normalize"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	updatesLimit   = 100
)

type Config struct {
	Token   string
	BaseURL string
	Client  apiclient.Config
}

type Connector struct {
	client  *apiclient.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Connector, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	logger = logger.With("platform", domain.PlatformTelegram)
	return &Connector{
		client:  apiclient.New(cfg.Client, logger),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		logger:  logger,
	}, nil
}

func (c *Connector) Platform() domain.Platform {
	return domain.PlatformTelegram
}

// FetchContent returns the pending channel posts of sourceID (a @username or numeric chat id), newest first.
func (c *Connector) FetchContent(ctx context.Context, sourceID string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	posts, err := c.channelPosts(ctx)
	if err != nil {
		return nil, domain.NewSourceError(domain.PlatformTelegram, "fetch", err)
	}

	return c.collect(ctx, posts, opts, func(m *message) bool {
		return matchesChat(m.Chat, sourceID)
	}), nil
}

// SearchContent matches query against the text of pending posts from any channel the bot receives.
func (c *Connector) SearchContent(ctx context.Context, query string, opts domain.FetchOptions) ([]domain.ContentItem, error) {
	posts, err := c.channelPosts(ctx)
	if err != nil {
		return nil, domain.NewSourceError(domain.PlatformTelegram, "search", err)
	}

	needle := strings.ToLower(normalize.Text(query))
	c.logger.Debug("search limited to pending bot updates", "query", query, "window", len(posts))

	return c.collect(ctx, posts, opts, func(m *message) bool {
		return strings.Contains(strings.ToLower(messageText(m)), needle)
	}), nil
}

func (c *Connector) GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error) {
	params := url.Values{"chat_id": {chatParam(sourceID)}}

	var ch chat
	if err := c.call(ctx, "getChat", params, &ch); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.code == http.StatusBadRequest {
			return nil, nil
		}
		return nil, domain.NewSourceError(domain.PlatformTelegram, "source info", err)
	}

	info := &domain.SourceInfo{
		ID:   strconv.FormatInt(ch.ID, 10),
		Name: ch.Title,
		URL:  chatURL(ch),
	}

	var members int64
	if err := c.call(ctx, "getChatMemberCount", params, &members); err == nil {
		info.SubscriberCount = &members
	} else {
		c.logger.Debug("member count unavailable", "chat", sourceID, "error", err)
	}
	return info, nil
}

func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	var me struct {
		ID    int64 `json:"id"`
		IsBot bool  `json:"is_bot"`
	}
	if err := c.call(ctx, "getMe", nil, &me); err != nil {
		c.logger.Warn("credential check failed", "error", err)
		return false
	}
	return me.IsBot
}

func (c *Connector) channelPosts(ctx context.Context) ([]*message, error) {
	params := url.Values{
		"limit":           {strconv.Itoa(updatesLimit)},
		"allowed_updates": {`["channel_post"]`},
	}

	var updates []update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}

	posts := make([]*message, 0, len(updates))
	for _, u := range updates {
		if u.ChannelPost != nil {
			posts = append(posts, u.ChannelPost)
		}
	}
	return posts, nil
}

func (c *Connector) collect(ctx context.Context, posts []*message, opts domain.FetchOptions, keep func(*message) bool) []domain.ContentItem {
	sort.Slice(posts, func(i, j int) bool { return posts[i].Date > posts[j].Date })

	items := make([]domain.ContentItem, 0, len(posts))
	for _, m := range posts {
		if !keep(m) {
			continue
		}
		if opts.Since != nil && time.Unix(m.Date, 0).Before(*opts.Since) {
			continue
		}
		items = append(items, transformMessage(m))
	}

	pager := connector.NewPager(opts.MaxItems)
	if pager.Next(ctx) {
		pager.Add(items)
	}
	return pager.Items()
}

type apiError struct {
	code        int
	description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.code, e.description)
}

func (c *Connector) call(ctx context.Context, method string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var resp apiResponse
	err := c.client.GetJSON(ctx, endpoint, &resp)
	if err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) && json.Unmarshal(se.Body, &resp) == nil && resp.Description != "" {
			return &apiError{code: se.Code, description: resp.Description}
		}
		return fmt.Errorf("%s: %s", method, c.redact(err))
	}
	if !resp.OK {
		return &apiError{code: resp.ErrorCode, description: resp.Description}
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

// redact keeps the bot token out of error messages and logs.
func (c *Connector) redact(err error) string {
	return strings.ReplaceAll(err.Error(), c.token, "<token>")
}

func matchesChat(ch chat, sourceID string) bool {
	if id, err := strconv.ParseInt(sourceID, 10, 64); err == nil {
		return ch.ID == id
	}
	return strings.EqualFold(ch.Username, strings.TrimPrefix(sourceID, "@"))
}

func chatParam(sourceID string) string {
	if _, err := strconv.ParseInt(sourceID, 10, 64); err == nil {
		return sourceID
	}
	return "@" + strings.TrimPrefix(sourceID, "@")
}

func chatURL(ch chat) string {
	if ch.Username != "" {
		return "https://t.me/" + ch.Username
	}
	return "https://t.me/c/" + strings.TrimPrefix(strconv.FormatInt(ch.ID, 10), "-100")
}
