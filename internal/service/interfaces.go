package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"content_fetcher/internal/domain"
)

type ContentStore interface {
	Upsert(ctx context.Context, item *domain.ContentItem) (domain.UpsertOutcome, error)
}

type LedgerStore interface {
	Record(ctx context.Context, job *domain.FetchJob) error
	MarkRunning(ctx context.Context, platform domain.Platform, sourceID string, sourceType domain.SourceType) error
	List(ctx context.Context, platform *domain.Platform, limit int) ([]domain.FetchJob, error)
}

type Publisher interface {
	Publish(ctx context.Context, item *domain.ContentItem, outcome domain.UpsertOutcome) error
	Close() error
}

type Indexer interface {
	Index(ctx context.Context, item *domain.ContentItem) error
}
