package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"content_fetcher/internal/connector"
	"content_fetcher/internal/domain"
)

// JobService runs one fetch or search job end to end: resolve the connector,
// call it, upsert every item, then record the outcome in the ledger.
type JobService struct {
	registry  *connector.Registry
	contents  ContentStore
	ledger    LedgerStore
	publisher Publisher
	indexer   Indexer
	logger    *slog.Logger
	now       func() time.Time

	// finalizeTimeout bounds storing and recording once the fetch is over.
	finalizeTimeout time.Duration
}

// DefaultFinalizeTimeout is how long a job may spend storing fetched items and
// writing its ledger entry after the job context is done.
const DefaultFinalizeTimeout = 30 * time.Second

// NewJobService wires the orchestrator. publisher and indexer may be nil.
func NewJobService(
	registry *connector.Registry,
	contents ContentStore,
	ledger LedgerStore,
	publisher Publisher,
	indexer Indexer,
	logger *slog.Logger,
) *JobService {
	return &JobService{
		registry:  registry,
		contents:  contents,
		ledger:    ledger,
		publisher: publisher,
		indexer:   indexer,
		logger:    logger,
		now:       time.Now,

		finalizeTimeout: DefaultFinalizeTimeout,
	}
}

// Run executes spec. Only a *domain.ValidationError or *domain.ConfigurationError
// is returned as an error; every later failure is folded into the result.
func (s *JobService) Run(ctx context.Context, spec domain.JobSpec) (*domain.JobResult, error) {
	conn, spec, err := s.validate(spec)
	if err != nil {
		return nil, err
	}

	start := s.now()
	result := &domain.JobResult{
		RunID:       uuid.NewString(),
		Platform:    spec.Platform,
		SourceID:    spec.SourceID,
		SearchQuery: spec.SearchQuery,
	}
	logger := s.logger.With("run_id", result.RunID, "platform", spec.Platform, "mode", spec.Mode())

	if spec.SourceID != "" && spec.SearchQuery != "" {
		logger.Warn("search query takes precedence, source id not fetched",
			"event", "source_id_ignored",
			"source_id", spec.SourceID,
			"search_query", spec.SearchQuery,
		)
	}

	if spec.Mode() == domain.ModeFetch {
		if err := s.ledger.MarkRunning(ctx, spec.Platform, spec.SourceID, spec.SourceType); err != nil {
			logger.Warn("failed to mark job running", "source_id", spec.SourceID, "error", err)
		}
	}

	logger.Info("starting job", "source_id", spec.SourceID, "search_query", spec.SearchQuery, "max_items", spec.MaxItems)

	items, fetchErr := s.dispatch(ctx, conn, spec)
	if fetchErr != nil {
		logger.Error("connector call failed", "error", fetchErr, "partial_items", len(items))
		result.ErrorMessages = append(result.ErrorMessages, fetchErr.Error())
	}
	items = connector.Capped(items, spec.MaxItems)
	result.ItemsFetched = len(items)

	// Cancellation stops the fetch only. What was fetched is still stored and
	// the ledger entry still leaves the running state.
	finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.finalizeTimeout)
	defer cancel()

	s.ingest(finalCtx, logger, items, result)

	result.Status = statusOf(result)
	result.Duration = s.now().Sub(start)

	if spec.SourceID != "" {
		if err := s.record(finalCtx, conn, spec, result, fetchErr == nil); err != nil {
			logger.Error("failed to record job", "source_id", spec.SourceID, "error", err)
			result.ErrorMessages = append(result.ErrorMessages, err.Error())
			result.Status = statusOf(result)
		}
	}

	logger.Info("job finished",
		"status", result.Status,
		"items_fetched", result.ItemsFetched,
		"new_items", result.NewItems,
		"errors", len(result.ErrorMessages),
		"duration", result.Duration,
	)

	return result, nil
}

// ListJobs returns the latest ledger entries, newest first.
func (s *JobService) ListJobs(ctx context.Context, platform *domain.Platform) ([]domain.FetchJob, error) {
	if platform != nil && !platform.Valid() {
		return nil, &domain.ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", *platform)}
	}

	jobs, err := s.ledger.List(ctx, platform, domain.MaxLedgerList)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

type PlatformStatus struct {
	Platform domain.Platform `json:"platform"`
	Healthy  bool            `json:"healthy"`
}

// Platforms reports every registered platform with its credential check.
func (s *JobService) Platforms(ctx context.Context) []PlatformStatus {
	platforms := s.registry.Platforms()
	out := make([]PlatformStatus, 0, len(platforms))
	for _, p := range platforms {
		conn, err := s.registry.Resolve(p)
		if err != nil {
			continue
		}
		out = append(out, PlatformStatus{Platform: p, Healthy: conn.ValidateCredentials(ctx)})
	}
	return out
}

func (s *JobService) validate(spec domain.JobSpec) (connector.Connector, domain.JobSpec, error) {
	spec.SourceID = strings.TrimSpace(spec.SourceID)
	spec.SearchQuery = strings.TrimSpace(spec.SearchQuery)

	if spec.Platform == "" {
		return nil, spec, &domain.ValidationError{Field: "platform", Reason: "is required"}
	}

	conn, err := s.registry.Resolve(spec.Platform)
	if err != nil {
		return nil, spec, err
	}

	switch {
	case spec.SourceID == "" && spec.SearchQuery == "":
		return nil, spec, &domain.ValidationError{Field: "sourceId", Reason: "either sourceId or searchQuery is required"}
	case spec.MaxItems < 0:
		return nil, spec, &domain.ValidationError{Field: "maxItems", Reason: "must not be negative"}
	case spec.SourceType != "" && !spec.SourceType.Valid():
		return nil, spec, &domain.ValidationError{Field: "sourceType", Reason: fmt.Sprintf("unknown source type %q", spec.SourceType)}
	}

	if spec.MaxItems == 0 {
		spec.MaxItems = domain.DefaultMaxItems
	}
	if spec.SourceType == "" {
		spec.SourceType = domain.SourceChannel
	}
	return conn, spec, nil
}

func (s *JobService) dispatch(ctx context.Context, conn connector.Connector, spec domain.JobSpec) ([]domain.ContentItem, error) {
	opts := domain.FetchOptions{MaxItems: spec.MaxItems}
	if spec.Mode() == domain.ModeSearch {
		return conn.SearchContent(ctx, spec.SearchQuery, opts)
	}
	return conn.FetchContent(ctx, spec.SourceID, opts)
}

func (s *JobService) ingest(ctx context.Context, logger *slog.Logger, items []domain.ContentItem, result *domain.JobResult) {
	now := s.now()

	for i := range items {
		if err := ctx.Err(); err != nil {
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("ingestion stopped after %d of %d items: %v", i, len(items), err))
			return
		}

		item := &items[i]
		item.FetchedAt = now
		item.Metrics.LastUpdated = now

		outcome, err := s.persist(ctx, item)
		if err != nil {
			logger.Warn("failed to store item", "platform_id", item.PlatformID, "error", err)
			result.ErrorMessages = append(result.ErrorMessages, err.Error())
			continue
		}
		result.NewItems++

		if outcome == domain.OutcomeStale {
			logger.Debug("stored item is fresher, skipped", "platform_id", item.PlatformID)
			continue
		}
		s.notify(ctx, logger, item, outcome)
	}
}

func (s *JobService) persist(ctx context.Context, item *domain.ContentItem) (domain.UpsertOutcome, error) {
	if err := item.Validate(); err != nil {
		return "", &domain.PersistenceError{Platform: item.Platform, PlatformID: item.PlatformID, Err: err}
	}

	outcome, err := s.contents.Upsert(ctx, item)
	if err != nil {
		var persistErr *domain.PersistenceError
		if errors.As(err, &persistErr) {
			return "", err
		}
		return "", &domain.PersistenceError{Platform: item.Platform, PlatformID: item.PlatformID, Err: err}
	}
	return outcome, nil
}

func (s *JobService) notify(ctx context.Context, logger *slog.Logger, item *domain.ContentItem, outcome domain.UpsertOutcome) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, item, outcome); err != nil {
			logger.Warn("failed to publish content event", "platform_id", item.PlatformID, "error", err)
		}
	}
	if s.indexer != nil {
		if err := s.indexer.Index(ctx, item); err != nil {
			logger.Warn("failed to index content", "platform_id", item.PlatformID, "error", err)
		}
	}
}

// record writes the ledger entry. The source name is looked up only after a
// successful connector call; a failed one falls back to the source id.
func (s *JobService) record(ctx context.Context, conn connector.Connector, spec domain.JobSpec, result *domain.JobResult, lookupName bool) error {
	sourceName := spec.SourceID
	if lookupName {
		if info, err := conn.GetSourceInfo(ctx, spec.SourceID); err == nil && info != nil && info.Name != "" {
			sourceName = info.Name
		}
	}

	job := &domain.FetchJob{
		Platform:   spec.Platform,
		SourceID:   spec.SourceID,
		SourceType: spec.SourceType,
		SourceName: sourceName,
		Status:     result.Status,
		LastRun:    s.now(),
		LastResult: domain.LastResult{
			ItemsFetched:  result.ItemsFetched,
			NewItems:      result.NewItems,
			ErrorMessages: result.ErrorMessages,
			DurationMS:    result.Duration.Milliseconds(),
		},
		IsEnabled: true,
	}
	if err := s.ledger.Record(ctx, job); err != nil {
		return fmt.Errorf("record job: %w", err)
	}
	return nil
}

func statusOf(result *domain.JobResult) domain.JobStatus {
	if len(result.ErrorMessages) > 0 {
		return domain.StatusFailed
	}
	return domain.StatusCompleted
}
