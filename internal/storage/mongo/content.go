// Package mongo stores content and the job ledger in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"content_fetcher/internal/domain"
)

type ContentStore struct {
	coll *mongodrv.Collection
	now  func() time.Time
}

func NewContentStore(db *mongodrv.Database) *ContentStore {
	return &ContentStore{
		coll: db.Collection(ContentsCollection),
		now:  time.Now,
	}
}

// Upsert writes the platform fields of item. The filter only matches a stored
// document that is not fresher than item, so a stale write either matches
// nothing and collides on the unique index, or never happens.
func (s *ContentStore) Upsert(ctx context.Context, item *domain.ContentItem) (domain.UpsertOutcome, error) {
	if err := item.Validate(); err != nil {
		return "", s.wrap(item, err)
	}

	outcome, err := s.upsertOnce(ctx, item)
	if mongodrv.IsDuplicateKeyError(err) {
		// Either a concurrent insert won the race or the stored document is fresher.
		outcome, err = s.upsertOnce(ctx, item)
		if mongodrv.IsDuplicateKeyError(err) {
			return domain.OutcomeStale, nil
		}
	}
	if err != nil {
		return "", s.wrap(item, err)
	}
	return outcome, nil
}

func (s *ContentStore) upsertOnce(ctx context.Context, item *domain.ContentItem) (domain.UpsertOutcome, error) {
	now := s.now()
	filter := bson.M{
		"platform":   item.Platform,
		"platformId": item.PlatformID,
		"fetchedAt":  bson.M{"$lte": item.FetchedAt},
	}

	set, err := toBSON(newPlatformFields(item))
	if err != nil {
		return "", err
	}
	set["updatedAt"] = now

	onInsert, err := toBSON(newSiteFields(domain.DefaultSiteFields()))
	if err != nil {
		return "", err
	}
	onInsert["createdAt"] = now

	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)

	err = s.coll.FindOneAndUpdate(ctx, filter, update, opts).Err()
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return domain.OutcomeInserted, nil
	}
	if err != nil {
		return "", err
	}
	return domain.OutcomeUpdated, nil
}

// Get loads one item, or nil when the identity is unknown.
func (s *ContentStore) Get(ctx context.Context, platform domain.Platform, platformID string) (*domain.ContentItem, error) {
	var doc contentDoc
	err := s.coll.FindOne(ctx, bson.M{"platform": platform, "platformId": platformID}).Decode(&doc)
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *ContentStore) wrap(item *domain.ContentItem, err error) error {
	return &domain.PersistenceError{Platform: item.Platform, PlatformID: item.PlatformID, Err: err}
}

func toBSON(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return m, nil
}
