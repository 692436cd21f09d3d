package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"content_fetcher/internal/domain"
)

type LedgerStore struct {
	coll *mongodrv.Collection
}

func NewLedgerStore(db *mongodrv.Database) *LedgerStore {
	return &LedgerStore{coll: db.Collection(FetchJobsCollection)}
}

func (s *LedgerStore) Record(ctx context.Context, job *domain.FetchJob) error {
	result := job.LastResult
	if result.ErrorMessages == nil {
		result.ErrorMessages = []string{}
	}

	filter := bson.M{"platform": job.Platform, "sourceId": job.SourceID}
	update := bson.M{
		"$set": bson.M{
			"sourceType": sourceTypeOrDefault(job.SourceType),
			"sourceName": job.SourceName,
			"status":     job.Status,
			"lastRun":    job.LastRun,
			"lastResult": result,
			"updatedAt":  time.Now(),
		},
		"$setOnInsert": bson.M{"isEnabled": true},
	}

	if _, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("record fetch job: %w", err)
	}
	return nil
}

func (s *LedgerStore) MarkRunning(ctx context.Context, platform domain.Platform, sourceID string, sourceType domain.SourceType) error {
	filter := bson.M{"platform": platform, "sourceId": sourceID}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.StatusRunning,
			"updatedAt": time.Now(),
		},
		"$setOnInsert": bson.M{
			"sourceType": sourceTypeOrDefault(sourceType),
			"sourceName": sourceID,
			"isEnabled":  true,
		},
	}

	if _, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mark fetch job running: %w", err)
	}
	return nil
}

func (s *LedgerStore) List(ctx context.Context, platform *domain.Platform, limit int) ([]domain.FetchJob, error) {
	if limit <= 0 || limit > domain.MaxLedgerList {
		limit = domain.MaxLedgerList
	}

	filter := bson.M{}
	if platform != nil {
		filter["platform"] = *platform
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "lastRun", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find fetch jobs: %w", err)
	}

	jobs := []domain.FetchJob{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("decode fetch jobs: %w", err)
	}
	return jobs, nil
}

func sourceTypeOrDefault(t domain.SourceType) domain.SourceType {
	if t == "" {
		return domain.SourceChannel
	}
	return t
}
