package domain

import (
	"errors"
	"time"
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTelegram  Platform = "telegram"
	PlatformX         Platform = "x"
	PlatformFacebook  Platform = "facebook"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformTelegram, PlatformX, PlatformFacebook:
		return true
	}
	return false
}

type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
	ContentText  ContentType = "text"
	ContentReel  ContentType = "reel"
	ContentStory ContentType = "story"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentImage, ContentText, ContentReel, ContentStory:
		return true
	}
	return false
}

type Author struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Handle     string `json:"handle"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	ProfileURL string `json:"profileUrl"`
}

// Metrics are the counters reported by the platform at fetch time.
// Nil means the platform did not expose the value.
type Metrics struct {
	Views       *int64    `json:"views,omitempty"`
	Likes       *int64    `json:"likes,omitempty"`
	Comments    *int64    `json:"comments,omitempty"`
	Shares      *int64    `json:"shares,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ContentItem is the canonical record. (Platform, PlatformID) is its identity.
type ContentItem struct {
	Platform     Platform    `json:"platform"`
	PlatformID   string      `json:"platformId"`
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	ContentURL   string      `json:"contentUrl"`
	EmbedURL     string      `json:"embedUrl,omitempty"`
	MediaURLs    []string    `json:"mediaUrls,omitempty"`
	Author       Author      `json:"author"`
	Metrics      Metrics     `json:"platformMetrics"`
	Tags         []string    `json:"tags"`
	Language     string      `json:"language"`
	PublishedAt  time.Time   `json:"publishedAt"`
	FetchedAt    time.Time   `json:"fetchedAt"`

	// Owned by the site, never written by ingestion after insert.
	SiteFields
}

type SiteFields struct {
	ShareCount int64 `json:"shareCount"`
	ViewCount  int64 `json:"viewCount"`
	IsActive   bool  `json:"isActive"`
	IsPinned   bool  `json:"isPinned"`
	Priority   int   `json:"priority"`
}

// DefaultSiteFields are applied when an identity is inserted for the first time.
func DefaultSiteFields() SiteFields {
	return SiteFields{
		ShareCount: 0,
		ViewCount:  0,
		IsActive:   true,
		IsPinned:   false,
		Priority:   0,
	}
}

// Key returns the composite identity as a single string.
func (c *ContentItem) Key() string {
	return string(c.Platform) + "_" + c.PlatformID
}

// Validate checks the constraints the store enforces on every record.
func (c *ContentItem) Validate() error {
	switch {
	case !c.Platform.Valid():
		return errors.New("invalid platform")
	case c.PlatformID == "":
		return errors.New("missing platform id")
	case !c.Type.Valid():
		return errors.New("invalid content type")
	case c.ContentURL == "":
		return errors.New("missing content url")
	}
	return nil
}

// UpsertOutcome reports what an upsert did to the stored record.
type UpsertOutcome string

const (
	OutcomeInserted UpsertOutcome = "inserted"
	OutcomeUpdated  UpsertOutcome = "updated"
	// OutcomeStale means the stored record was fetched later than the incoming one and was kept.
	OutcomeStale UpsertOutcome = "stale"
)

type SourceInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	SubscriberCount *int64 `json:"subscriberCount,omitempty"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
}

type FetchOptions struct {
	MaxItems int
	Since    *time.Time
}
