package x

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/normalize"
)

const dateLayout = "Jan 2, 2006 · 3:04 PM MST"

func parseProfile(doc *goquery.Document, instance, username string) *domain.SourceInfo {
	name := strings.TrimSpace(doc.Find(".profile-card-fullname").First().Text())
	if name == "" {
		return nil
	}
	avatar, _ := doc.Find(".profile-card-avatar img").First().Attr("src")

	info := &domain.SourceInfo{
		ID:        username,
		Name:      name,
		URL:       "https://x.com/" + username,
		AvatarURL: absolute(instance, avatar),
	}
	doc.Find(".profile-statlist li").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("followers") {
			info.SubscriberCount = normalize.Count(s.Find(".profile-stat-num").Text())
		}
	})
	return info
}

// parseTimeline reads tweets from a profile or search page. Retweets are skipped.
func parseTimeline(doc *goquery.Document, instance string, now time.Time) []domain.ContentItem {
	var items []domain.ContentItem
	doc.Find(".timeline-item").Each(func(_ int, s *goquery.Selection) {
		if s.Find(".retweet-header").Length() > 0 {
			return
		}
		if item, ok := parseTweet(s, instance, now); ok {
			items = append(items, item)
		}
	})
	return items
}

func parseTweet(s *goquery.Selection, instance string, now time.Time) (domain.ContentItem, bool) {
	href, _ := s.Find(".tweet-link").First().Attr("href")
	href, _, _ = strings.Cut(href, "#")
	path, tweetID, ok := strings.Cut(href, "/status/")
	if !ok || tweetID == "" {
		return domain.ContentItem{}, false
	}
	username := strings.Trim(path, "/")

	text := normalize.Text(s.Find(".tweet-content").First().Text())
	fullname := strings.TrimSpace(s.Find(".fullname").First().Text())
	if fullname == "" {
		fullname = username
	}
	avatar, _ := s.Find(".avatar img, .tweet-avatar img").First().Attr("src")

	published := now
	if title, ok := s.Find(".tweet-date a").First().Attr("title"); ok {
		if t, err := time.Parse(dateLayout, title); err == nil {
			published = t
		}
	}

	item := domain.ContentItem{
		Platform:    domain.PlatformX,
		PlatformID:  tweetID,
		Type:        domain.ContentText,
		Title:       normalize.Truncate(text, 100),
		Description: text,
		ContentURL:  "https://x.com/" + username + "/status/" + tweetID,
		Author: domain.Author{
			ID:         username,
			Name:       fullname,
			Handle:     username,
			AvatarURL:  absolute(instance, avatar),
			ProfileURL: "https://x.com/" + username,
		},
		Tags:        normalize.Hashtags(text),
		Language:    normalize.Language(text),
		PublishedAt: published,
	}
	if item.Title == "" {
		item.Title = "Post by @" + username
	}

	s.Find(".tweet-stat").Each(func(_ int, stat *goquery.Selection) {
		n := normalize.Count(stat.Text())
		switch {
		case stat.Find(".icon-comment").Length() > 0:
			item.Metrics.Comments = n
		case stat.Find(".icon-retweet").Length() > 0:
			item.Metrics.Shares = n
		case stat.Find(".icon-heart").Length() > 0:
			item.Metrics.Likes = n
		case stat.Find(".icon-views").Length() > 0:
			item.Metrics.Views = n
		}
	})

	var media []string
	s.Find(".attachments .still-image img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			media = append(media, absolute(instance, src))
		}
	})
	if len(media) > 0 {
		item.Type = domain.ContentImage
	}
	s.Find(".attachments .gif-video, .attachments .gallery-video video").Each(func(_ int, v *goquery.Selection) {
		item.Type = domain.ContentVideo
		if poster, ok := v.Attr("poster"); ok {
			media = append(media, absolute(instance, poster))
		}
	})
	item.MediaURLs = normalize.Unique(media)
	if len(item.MediaURLs) > 0 {
		item.ThumbnailURL = item.MediaURLs[0]
	}

	return item, true
}

func absolute(instance, src string) string {
	if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return instance + "/" + strings.TrimPrefix(src, "/")
}
