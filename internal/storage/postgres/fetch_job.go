package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"content_fetcher/internal/domain"
)

// LedgerStore keeps the latest run per (platform, source_id).
type LedgerStore struct {
	db *sqlx.DB
}

func NewLedgerStore(db *sqlx.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type lastResultColumn domain.LastResult

func (c lastResultColumn) Value() (driver.Value, error) {
	if c.ErrorMessages == nil {
		c.ErrorMessages = []string{}
	}
	return json.Marshal(c)
}

func (c *lastResultColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = lastResultColumn{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("scan last_result: unsupported type %T", src)
	}
}

type fetchJobRow struct {
	Platform   string           `db:"platform"`
	SourceID   string           `db:"source_id"`
	SourceType string           `db:"source_type"`
	SourceName string           `db:"source_name"`
	Status     string           `db:"status"`
	LastRun    sql.NullTime     `db:"last_run"`
	LastResult lastResultColumn `db:"last_result"`
	IsEnabled  bool             `db:"is_enabled"`
}

func (s *LedgerStore) Record(ctx context.Context, job *domain.FetchJob) error {
	query := `
		INSERT INTO fetch_jobs (platform, source_id, source_type, source_name, status, last_run, last_result, is_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (platform, source_id) DO UPDATE SET
			source_type = EXCLUDED.source_type,
			source_name = EXCLUDED.source_name,
			status = EXCLUDED.status,
			last_run = EXCLUDED.last_run,
			last_result = EXCLUDED.last_result,
			updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		job.Platform,
		job.SourceID,
		sourceTypeOrDefault(job.SourceType),
		job.SourceName,
		job.Status,
		job.LastRun,
		lastResultColumn(job.LastResult),
	)
	if err != nil {
		return fmt.Errorf("record fetch job: %w", err)
	}
	return nil
}

// MarkRunning flags the source as in progress without touching the previous result.
func (s *LedgerStore) MarkRunning(ctx context.Context, platform domain.Platform, sourceID string, sourceType domain.SourceType) error {
	query := `
		INSERT INTO fetch_jobs (platform, source_id, source_type, source_name, status)
		VALUES ($1, $2, $3, $2, 'running')
		ON CONFLICT (platform, source_id) DO UPDATE SET
			status = 'running',
			updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, platform, sourceID, sourceTypeOrDefault(sourceType)); err != nil {
		return fmt.Errorf("mark fetch job running: %w", err)
	}
	return nil
}

func (s *LedgerStore) List(ctx context.Context, platform *domain.Platform, limit int) ([]domain.FetchJob, error) {
	if limit <= 0 || limit > domain.MaxLedgerList {
		limit = domain.MaxLedgerList
	}

	query := `
		SELECT platform, source_id, source_type, source_name, status, last_run, last_result, is_enabled
		FROM fetch_jobs
		WHERE ($1::text IS NULL OR platform = $1)
		ORDER BY last_run DESC NULLS LAST, id DESC
		LIMIT $2`

	var filter sql.NullString
	if platform != nil {
		filter = sql.NullString{String: string(*platform), Valid: true}
	}

	var rows []fetchJobRow
	if err := s.db.SelectContext(ctx, &rows, query, filter, limit); err != nil {
		return nil, fmt.Errorf("list fetch jobs: %w", err)
	}

	jobs := make([]domain.FetchJob, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, domain.FetchJob{
			Platform:   domain.Platform(r.Platform),
			SourceID:   r.SourceID,
			SourceType: domain.SourceType(r.SourceType),
			SourceName: r.SourceName,
			Status:     domain.JobStatus(r.Status),
			LastRun:    r.LastRun.Time,
			LastResult: domain.LastResult(r.LastResult),
			IsEnabled:  r.IsEnabled,
		})
	}
	return jobs, nil
}

func sourceTypeOrDefault(t domain.SourceType) domain.SourceType {
	if t == "" {
		return domain.SourceChannel
	}
	return t
}
