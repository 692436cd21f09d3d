// Package publisher emits content change events to RabbitMQ.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"content_fetcher/internal/domain"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// RabbitMQ publishes on a single channel. Jobs run concurrently, so
// publishing is serialized.
type RabbitMQ struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if cfg.QueueName == "" {
		return nil
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// ContentPayload carries the platform-sourced fields only. Site counters and
// flags belong to the site and are never advertised by ingestion.
type ContentPayload struct {
	Platform     domain.Platform    `json:"platform"`
	PlatformID   string             `json:"platformId"`
	Type         domain.ContentType `json:"type"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	ThumbnailURL string             `json:"thumbnailUrl"`
	ContentURL   string             `json:"contentUrl"`
	EmbedURL     string             `json:"embedUrl,omitempty"`
	MediaURLs    []string           `json:"mediaUrls,omitempty"`
	Author       domain.Author      `json:"author"`
	Metrics      domain.Metrics     `json:"platformMetrics"`
	Tags         []string           `json:"tags"`
	Language     string             `json:"language"`
	PublishedAt  time.Time          `json:"publishedAt"`
	FetchedAt    time.Time          `json:"fetchedAt"`
}

type ContentMessage struct {
	Action  string         `json:"action"`
	Content ContentPayload `json:"content"`
	// Site holds the initial site fields of a new record. Set on create only.
	Site      *domain.SiteFields `json:"site,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

func NewContentMessage(item *domain.ContentItem, outcome domain.UpsertOutcome, now time.Time) ContentMessage {
	msg := ContentMessage{
		Action: ActionUpdate,
		Content: ContentPayload{
			Platform:     item.Platform,
			PlatformID:   item.PlatformID,
			Type:         item.Type,
			Title:        item.Title,
			Description:  item.Description,
			ThumbnailURL: item.ThumbnailURL,
			ContentURL:   item.ContentURL,
			EmbedURL:     item.EmbedURL,
			MediaURLs:    item.MediaURLs,
			Author:       item.Author,
			Metrics:      item.Metrics,
			Tags:         item.Tags,
			Language:     item.Language,
			PublishedAt:  item.PublishedAt,
			FetchedAt:    item.FetchedAt,
		},
		Timestamp: now.UTC(),
	}
	if outcome == domain.OutcomeInserted {
		site := domain.DefaultSiteFields()
		msg.Action = ActionCreate
		msg.Site = &site
	}
	return msg
}

func (r *RabbitMQ) Publish(ctx context.Context, item *domain.ContentItem, outcome domain.UpsertOutcome) error {
	msg := NewContentMessage(item, outcome, time.Now())

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	r.mu.Lock()
	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    item.Key(),
			Headers:      amqp.Table{"platform": string(item.Platform)},
			Body:         body,
			Timestamp:    msg.Timestamp,
		},
	)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published content event",
		"key", item.Key(),
		"action", msg.Action,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
