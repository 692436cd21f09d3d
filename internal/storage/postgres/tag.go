package postgres

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"content_fetcher/internal/normalize"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// UpsertLabels makes sure every label has a row and returns their ids.
// Labels are inserted in sorted order so concurrent writers lock rows in the same order.
func (s *TagStore) UpsertLabels(ctx context.Context, labels []string) ([]int64, error) {
	labels = normalize.Unique(labels)
	if len(labels) == 0 {
		return nil, nil
	}
	sort.Strings(labels)

	var sb strings.Builder
	sb.WriteString("INSERT INTO tags (label) VALUES ")
	args := make([]any, 0, len(labels))
	for i, label := range labels {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($" + strconv.Itoa(i+1) + ")")
		args = append(args, label)
	}
	sb.WriteString(" ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label RETURNING id")

	var ids []int64
	if err := sqlx.SelectContext(ctx, Executor(ctx, s.db), &ids, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("upsert tags: %w", err)
	}
	return ids, nil
}

// ReplaceLinks points a content row at exactly tagIDs.
func (s *TagStore) ReplaceLinks(ctx context.Context, contentID int64, tagIDs []int64) error {
	exec := Executor(ctx, s.db)

	if _, err := exec.ExecContext(ctx, "DELETE FROM content_tags WHERE content_id = $1", contentID); err != nil {
		return fmt.Errorf("unlink tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	_, err := exec.ExecContext(ctx, `
		INSERT INTO content_tags (content_id, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`,
		contentID, pq.Array(tagIDs),
	)
	if err != nil {
		return fmt.Errorf("link tags: %w", err)
	}
	return nil
}

func (s *TagStore) LabelsByContentID(ctx context.Context, contentID int64) ([]string, error) {
	query := `
		SELECT t.label
		FROM tags t
		INNER JOIN content_tags ct ON ct.tag_id = t.id
		WHERE ct.content_id = $1
		ORDER BY t.label`

	var labels []string
	if err := sqlx.SelectContext(ctx, Executor(ctx, s.db), &labels, query, contentID); err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}
	return labels, nil
}
