package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"content_fetcher/internal/domain"
)

// ContentStore persists canonical items keyed by (platform, platform_id).
// Site-local columns are only ever set by their column defaults.
type ContentStore struct {
	db   *sqlx.DB
	tx   *TransactionManager
	tags *TagStore
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{
		db:   db,
		tx:   NewTransactionManager(db),
		tags: NewTagStore(db),
	}
}

const upsertContentQuery = `
	INSERT INTO contents (
		platform, platform_id, type, title, description, thumbnail_url, content_url, embed_url, media_urls,
		author_id, author_name, author_handle, author_avatar_url, author_profile_url,
		views, likes, comments, shares, metrics_updated_at,
		language, published_at, fetched_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9,
		$10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19,
		$20, $21, $22
	)
	ON CONFLICT (platform, platform_id) DO UPDATE SET
		type = EXCLUDED.type,
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		thumbnail_url = EXCLUDED.thumbnail_url,
		content_url = EXCLUDED.content_url,
		embed_url = EXCLUDED.embed_url,
		media_urls = EXCLUDED.media_urls,
		author_id = EXCLUDED.author_id,
		author_name = EXCLUDED.author_name,
		author_handle = EXCLUDED.author_handle,
		author_avatar_url = EXCLUDED.author_avatar_url,
		author_profile_url = EXCLUDED.author_profile_url,
		views = EXCLUDED.views,
		likes = EXCLUDED.likes,
		comments = EXCLUDED.comments,
		shares = EXCLUDED.shares,
		metrics_updated_at = EXCLUDED.metrics_updated_at,
		language = EXCLUDED.language,
		published_at = EXCLUDED.published_at,
		fetched_at = EXCLUDED.fetched_at,
		updated_at = NOW()
	WHERE contents.fetched_at <= EXCLUDED.fetched_at
	RETURNING id, (xmax = 0) AS inserted`

func (s *ContentStore) Upsert(ctx context.Context, item *domain.ContentItem) (domain.UpsertOutcome, error) {
	if err := item.Validate(); err != nil {
		return "", s.wrap(item, err)
	}

	mediaURLs := item.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}

	var outcome domain.UpsertOutcome
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var row struct {
			ID       int64 `db:"id"`
			Inserted bool  `db:"inserted"`
		}
		err := sqlx.GetContext(ctx, Executor(ctx, s.db), &row, upsertContentQuery,
			item.Platform,
			item.PlatformID,
			item.Type,
			item.Title,
			item.Description,
			item.ThumbnailURL,
			item.ContentURL,
			item.EmbedURL,
			pq.Array(mediaURLs),
			item.Author.ID,
			item.Author.Name,
			item.Author.Handle,
			item.Author.AvatarURL,
			item.Author.ProfileURL,
			item.Metrics.Views,
			item.Metrics.Likes,
			item.Metrics.Comments,
			item.Metrics.Shares,
			item.Metrics.LastUpdated,
			item.Language,
			item.PublishedAt,
			item.FetchedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			outcome = domain.OutcomeStale
			return nil
		}
		if err != nil {
			return fmt.Errorf("upsert content: %w", err)
		}

		outcome = domain.OutcomeUpdated
		if row.Inserted {
			outcome = domain.OutcomeInserted
		}

		tagIDs, err := s.tags.UpsertLabels(ctx, item.Tags)
		if err != nil {
			return err
		}
		return s.tags.ReplaceLinks(ctx, row.ID, tagIDs)
	})
	if err != nil {
		return "", s.wrap(item, err)
	}
	return outcome, nil
}

type contentRow struct {
	ID               int64          `db:"id"`
	Platform         string         `db:"platform"`
	PlatformID       string         `db:"platform_id"`
	Type             string         `db:"type"`
	Title            string         `db:"title"`
	Description      string         `db:"description"`
	ThumbnailURL     string         `db:"thumbnail_url"`
	ContentURL       string         `db:"content_url"`
	EmbedURL         string         `db:"embed_url"`
	MediaURLs        pq.StringArray `db:"media_urls"`
	AuthorID         string         `db:"author_id"`
	AuthorName       string         `db:"author_name"`
	AuthorHandle     string         `db:"author_handle"`
	AuthorAvatarURL  string         `db:"author_avatar_url"`
	AuthorProfileURL string         `db:"author_profile_url"`
	Views            sql.NullInt64  `db:"views"`
	Likes            sql.NullInt64  `db:"likes"`
	Comments         sql.NullInt64  `db:"comments"`
	Shares           sql.NullInt64  `db:"shares"`
	MetricsUpdatedAt time.Time      `db:"metrics_updated_at"`
	Language         string         `db:"language"`
	PublishedAt      time.Time      `db:"published_at"`
	FetchedAt        time.Time      `db:"fetched_at"`
	ShareCount       int64          `db:"share_count"`
	ViewCount        int64          `db:"view_count"`
	IsActive         bool           `db:"is_active"`
	IsPinned         bool           `db:"is_pinned"`
	Priority         int            `db:"priority"`
}

// Get loads one item with its tags, or nil when the identity is unknown.
func (s *ContentStore) Get(ctx context.Context, platform domain.Platform, platformID string) (*domain.ContentItem, error) {
	var row contentRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, platform, platform_id, type, title, description, thumbnail_url, content_url, embed_url, media_urls,
			author_id, author_name, author_handle, author_avatar_url, author_profile_url,
			views, likes, comments, shares, metrics_updated_at, language, published_at, fetched_at,
			share_count, view_count, is_active, is_pinned, priority
		FROM contents
		WHERE platform = $1 AND platform_id = $2`,
		platform, platformID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select content: %w", err)
	}

	tags, err := s.tags.LabelsByContentID(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	item := row.toDomain()
	item.Tags = tags
	return item, nil
}

func (r contentRow) toDomain() *domain.ContentItem {
	return &domain.ContentItem{
		Platform:     domain.Platform(r.Platform),
		PlatformID:   r.PlatformID,
		Type:         domain.ContentType(r.Type),
		Title:        r.Title,
		Description:  r.Description,
		ThumbnailURL: r.ThumbnailURL,
		ContentURL:   r.ContentURL,
		EmbedURL:     r.EmbedURL,
		MediaURLs:    r.MediaURLs,
		Author: domain.Author{
			ID:         r.AuthorID,
			Name:       r.AuthorName,
			Handle:     r.AuthorHandle,
			AvatarURL:  r.AuthorAvatarURL,
			ProfileURL: r.AuthorProfileURL,
		},
		Metrics: domain.Metrics{
			Views:       nullInt(r.Views),
			Likes:       nullInt(r.Likes),
			Comments:    nullInt(r.Comments),
			Shares:      nullInt(r.Shares),
			LastUpdated: r.MetricsUpdatedAt,
		},
		Language:    r.Language,
		PublishedAt: r.PublishedAt,
		FetchedAt:   r.FetchedAt,
		SiteFields: domain.SiteFields{
			ShareCount: r.ShareCount,
			ViewCount:  r.ViewCount,
			IsActive:   r.IsActive,
			IsPinned:   r.IsPinned,
			Priority:   r.Priority,
		},
	}
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func (s *ContentStore) wrap(item *domain.ContentItem, err error) error {
	return &domain.PersistenceError{Platform: item.Platform, PlatformID: item.PlatformID, Err: err}
}
