// Package search keeps a Meilisearch index of ingested content in sync.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"content_fetcher/internal/domain"
)

const (
	DefaultIndex = "contents"
	primaryKey   = "id"
)

type Config struct {
	Host   string
	APIKey string
	Index  string
}

// Meili sends partial documents, so fields maintained by other writers
// (site counters, moderation flags) are never overwritten.
type Meili struct {
	client meilisearch.ServiceManager
	index  string
	logger *slog.Logger
}

func NewMeili(cfg Config, logger *slog.Logger) *Meili {
	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &Meili{
		client: meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey)),
		index:  index,
		logger: logger.With("index", index),
	}
}

// EnsureIndex creates the index and its attribute settings. An existing index is kept.
func (m *Meili) EnsureIndex(ctx context.Context) error {
	if _, err := m.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        m.index,
		PrimaryKey: primaryKey,
	}); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	idx := m.client.Index(m.index)
	if _, err := idx.UpdateSearchableAttributes(&[]string{"title", "description", "tags", "authorName", "authorHandle"}); err != nil {
		return fmt.Errorf("update searchable attributes: %w", err)
	}
	if _, err := idx.UpdateSortableAttributes(&[]string{"publishedAt", "views"}); err != nil {
		return fmt.Errorf("update sortable attributes: %w", err)
	}
	filterable := []interface{}{"platform", "type", "language", "tags"}
	if _, err := idx.UpdateFilterableAttributes(&filterable); err != nil {
		return fmt.Errorf("update filterable attributes: %w", err)
	}

	m.logger.Info("meilisearch index ready")
	return nil
}

func (m *Meili) Index(ctx context.Context, item *domain.ContentItem) error {
	pk := primaryKey
	doc := Document(item)

	task, err := m.client.Index(m.index).UpdateDocumentsWithContext(ctx, []map[string]interface{}{doc}, &meilisearch.DocumentOptions{PrimaryKey: &pk})
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc[primaryKey], err)
	}

	m.logger.Debug("document enqueued", "id", doc[primaryKey], "task_uid", task.TaskUID)
	return nil
}

// Document builds the partial search document for item. Only platform-sourced
// fields are included, and absent metrics are left out rather than zeroed.
func Document(item *domain.ContentItem) map[string]interface{} {
	doc := map[string]interface{}{
		primaryKey:     DocumentID(item),
		"platform":     item.Platform,
		"platformId":   item.PlatformID,
		"type":         item.Type,
		"title":        item.Title,
		"description":  item.Description,
		"thumbnailUrl": item.ThumbnailURL,
		"contentUrl":   item.ContentURL,
		"authorName":   item.Author.Name,
		"authorHandle": item.Author.Handle,
		"tags":         item.Tags,
		"language":     item.Language,
		"publishedAt":  item.PublishedAt.Unix(),
	}
	if item.Metrics.Views != nil {
		doc["views"] = *item.Metrics.Views
	}
	if item.Metrics.Likes != nil {
		doc["likes"] = *item.Metrics.Likes
	}
	return doc
}

// DocumentID maps the composite identity onto the characters Meilisearch accepts in ids.
func DocumentID(item *domain.ContentItem) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, item.Key())
}
