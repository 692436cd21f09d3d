package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes both stores rely on. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongodrv.Database) error {
	contents := db.Collection(ContentsCollection)
	_, err := contents.Indexes().CreateMany(ctx, []mongodrv.IndexModel{
		{
			Keys:    bson.D{{Key: "platform", Value: 1}, {Key: "platformId", Value: 1}},
			Options: options.Index().SetName("content_platform_identity").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "publishedAt", Value: -1}},
			Options: options.Index().SetName("content_published_at"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("content_tags"),
		},
		{
			Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "publishedAt", Value: -1}},
			Options: options.Index().SetName("content_active_published_at"),
		},
	})
	if err != nil && !isIndexExistsError(err) {
		return fmt.Errorf("create content indexes: %w", err)
	}

	jobs := db.Collection(FetchJobsCollection)
	_, err = jobs.Indexes().CreateMany(ctx, []mongodrv.IndexModel{
		{
			Keys:    bson.D{{Key: "platform", Value: 1}, {Key: "sourceId", Value: 1}},
			Options: options.Index().SetName("fetch_job_source").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "lastRun", Value: -1}},
			Options: options.Index().SetName("fetch_job_last_run"),
		},
	})
	if err != nil && !isIndexExistsError(err) {
		return fmt.Errorf("create fetch job indexes: %w", err)
	}
	return nil
}

func isIndexExistsError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "IndexOptionsConflict")
}
