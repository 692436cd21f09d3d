package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"content_fetcher/internal/domain"
)

const (
	ContentsCollection  = "contents"
	FetchJobsCollection = "fetch_jobs"
)

type authorDoc struct {
	ID         string `bson:"id"`
	Name       string `bson:"name"`
	Handle     string `bson:"handle"`
	AvatarURL  string `bson:"avatarUrl,omitempty"`
	ProfileURL string `bson:"profileUrl"`
}

type metricsDoc struct {
	Views       *int64    `bson:"views,omitempty"`
	Likes       *int64    `bson:"likes,omitempty"`
	Comments    *int64    `bson:"comments,omitempty"`
	Shares      *int64    `bson:"shares,omitempty"`
	LastUpdated time.Time `bson:"lastUpdated"`
}

// PlatformFields is the part of a content document that ingestion owns.
type PlatformFields struct {
	Type         domain.ContentType `bson:"type"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	ThumbnailURL string             `bson:"thumbnailUrl"`
	ContentURL   string             `bson:"contentUrl"`
	EmbedURL     string             `bson:"embedUrl,omitempty"`
	MediaURLs    []string           `bson:"mediaUrls"`
	Author       authorDoc          `bson:"author"`
	Metrics      metricsDoc         `bson:"platformMetrics"`
	Tags         []string           `bson:"tags"`
	Language     string             `bson:"language"`
	PublishedAt  time.Time          `bson:"publishedAt"`
	FetchedAt    time.Time          `bson:"fetchedAt"`
}

type SiteFields struct {
	ShareCount int64 `bson:"shareCount"`
	ViewCount  int64 `bson:"viewCount"`
	IsActive   bool  `bson:"isActive"`
	IsPinned   bool  `bson:"isPinned"`
	Priority   int   `bson:"priority"`
}

type contentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Platform   domain.Platform    `bson:"platform"`
	PlatformID string             `bson:"platformId"`

	PlatformFields `bson:",inline"`
	SiteFields     `bson:",inline"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func newPlatformFields(item *domain.ContentItem) PlatformFields {
	mediaURLs := item.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return PlatformFields{
		Type:         item.Type,
		Title:        item.Title,
		Description:  item.Description,
		ThumbnailURL: item.ThumbnailURL,
		ContentURL:   item.ContentURL,
		EmbedURL:     item.EmbedURL,
		MediaURLs:    mediaURLs,
		Author: authorDoc{
			ID:         item.Author.ID,
			Name:       item.Author.Name,
			Handle:     item.Author.Handle,
			AvatarURL:  item.Author.AvatarURL,
			ProfileURL: item.Author.ProfileURL,
		},
		Metrics: metricsDoc{
			Views:       item.Metrics.Views,
			Likes:       item.Metrics.Likes,
			Comments:    item.Metrics.Comments,
			Shares:      item.Metrics.Shares,
			LastUpdated: item.Metrics.LastUpdated,
		},
		Tags:        tags,
		Language:    item.Language,
		PublishedAt: item.PublishedAt,
		FetchedAt:   item.FetchedAt,
	}
}

func newSiteFields(f domain.SiteFields) SiteFields {
	return SiteFields{
		ShareCount: f.ShareCount,
		ViewCount:  f.ViewCount,
		IsActive:   f.IsActive,
		IsPinned:   f.IsPinned,
		Priority:   f.Priority,
	}
}

func (d *contentDoc) toDomain() *domain.ContentItem {
	return &domain.ContentItem{
		Platform:     d.Platform,
		PlatformID:   d.PlatformID,
		Type:         d.Type,
		Title:        d.Title,
		Description:  d.Description,
		ThumbnailURL: d.ThumbnailURL,
		ContentURL:   d.ContentURL,
		EmbedURL:     d.EmbedURL,
		MediaURLs:    d.MediaURLs,
		Author: domain.Author{
			ID:         d.Author.ID,
			Name:       d.Author.Name,
			Handle:     d.Author.Handle,
			AvatarURL:  d.Author.AvatarURL,
			ProfileURL: d.Author.ProfileURL,
		},
		Metrics: domain.Metrics{
			Views:       d.Metrics.Views,
			Likes:       d.Metrics.Likes,
			Comments:    d.Metrics.Comments,
			Shares:      d.Metrics.Shares,
			LastUpdated: d.Metrics.LastUpdated,
		},
		Tags:        d.Tags,
		Language:    d.Language,
		PublishedAt: d.PublishedAt,
		FetchedAt:   d.FetchedAt,
		SiteFields: domain.SiteFields{
			ShareCount: d.ShareCount,
			ViewCount:  d.ViewCount,
			IsActive:   d.IsActive,
			IsPinned:   d.IsPinned,
			Priority:   d.Priority,
		},
	}
}
