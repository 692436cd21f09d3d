package tiktok

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/normalize"
)

func parseProfileInfo(doc *goquery.Document, username string) *domain.SourceInfo {
	name := strings.TrimSpace(doc.Find(`[data-e2e="user-title"]`).First().Text())
	if name == "" {
		return nil
	}
	avatar, _ := doc.Find(`[data-e2e="user-avatar"] img`).First().Attr("src")
	return &domain.SourceInfo{
		ID:              username,
		Name:            name,
		URL:             profileURL(username),
		SubscriberCount: normalize.Count(doc.Find(`[data-e2e="followers-count"]`).First().Text()),
		AvatarURL:       avatar,
	}
}

// parseProfileItems reads video tiles from a profile grid. The grid has no
// dates, so PublishedAt is the scrape time.
func parseProfileItems(doc *goquery.Document, username string, now time.Time) []domain.ContentItem {
	authorName := strings.TrimSpace(doc.Find(`[data-e2e="user-title"]`).First().Text())
	if authorName == "" {
		authorName = username
	}
	avatar, _ := doc.Find(`[data-e2e="user-avatar"] img`).First().Attr("src")

	var items []domain.ContentItem
	doc.Find(`[data-e2e="user-post-item"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").First().Attr("href")
		videoID := videoIDFromHref(href)
		if videoID == "" {
			return
		}

		item := newItem(s, videoID, username, now)
		item.Author.Name = authorName
		item.Author.AvatarURL = avatar
		item.Metrics.Views = normalize.Count(s.Find(`[data-e2e="video-views"]`).First().Text())
		items = append(items, item)
	})
	return items
}

func parseSearchItems(doc *goquery.Document, now time.Time) []domain.ContentItem {
	var items []domain.ContentItem
	doc.Find(`[data-e2e="search-card-container"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").First().Attr("href")
		videoID := videoIDFromHref(href)
		username := usernameFromHref(href)
		if videoID == "" || username == "" {
			return
		}

		item := newItem(s, videoID, username, now)
		if name := strings.TrimSpace(s.Find(`[data-e2e="search-card-user-unique-id"]`).First().Text()); name != "" {
			item.Author.Name = name
		}
		items = append(items, item)
	})
	return items
}

func newItem(s *goquery.Selection, videoID, username string, now time.Time) domain.ContentItem {
	description := normalize.Text(s.Find(`[data-e2e="video-desc"]`).First().Text())
	thumbnail, _ := s.Find("img").First().Attr("src")

	title := normalize.Truncate(description, 100)
	if title == "" {
		title = "TikTok Video"
	}

	return domain.ContentItem{
		Platform:     domain.PlatformTikTok,
		PlatformID:   videoID,
		Type:         domain.ContentVideo,
		Title:        title,
		Description:  description,
		ThumbnailURL: thumbnail,
		ContentURL:   profileURL(username) + "/video/" + videoID,
		EmbedURL:     baseURL + "/embed/v2/" + videoID,
		Author: domain.Author{
			ID:         username,
			Name:       username,
			Handle:     username,
			ProfileURL: profileURL(username),
		},
		Tags:        normalize.Hashtags(description),
		Language:    normalize.Language(description),
		PublishedAt: now,
	}
}

func videoIDFromHref(href string) string {
	_, after, ok := strings.Cut(href, "/video/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(after, "?")
	id, _, _ = strings.Cut(id, "/")
	return id
}

func usernameFromHref(href string) string {
	_, after, ok := strings.Cut(href, "/@")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(after, "/")
	return name
}
