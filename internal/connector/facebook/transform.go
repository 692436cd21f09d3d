package facebook

import (
	"time"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/normalize"
)

const graphTimeLayout = "2006-01-02T15:04:05-0700"

func transformPost(p *post, source *domain.SourceInfo) (domain.ContentItem, bool) {
	if p.ID == "" || (p.Message == "" && p.FullPicture == "") {
		return domain.ContentItem{}, false
	}

	publishedAt, err := time.Parse(graphTimeLayout, p.CreatedTime)
	if err != nil {
		return domain.ContentItem{}, false
	}

	title := normalize.Truncate(normalize.FirstLine(p.Message), 100)
	if title == "" {
		title = "Facebook Post"
	}
	description := normalize.Text(p.Message)

	contentURL := p.PermalinkURL
	if contentURL == "" {
		contentURL = "https://www.facebook.com/" + p.ID
	}

	media, hasVideo := mediaURLs(p)
	contentType := domain.ContentText
	switch {
	case hasVideo:
		contentType = domain.ContentVideo
	case p.FullPicture != "" || len(media) > 0:
		contentType = domain.ContentImage
	}

	item := domain.ContentItem{
		Platform:     domain.PlatformFacebook,
		PlatformID:   p.ID,
		Type:         contentType,
		Title:        title,
		Description:  description,
		ThumbnailURL: p.FullPicture,
		ContentURL:   contentURL,
		MediaURLs:    media,
		Author: domain.Author{
			ID:         source.ID,
			Name:       source.Name,
			Handle:     source.ID,
			AvatarURL:  source.AvatarURL,
			ProfileURL: source.URL,
		},
		Tags:        normalize.Hashtags(p.Message),
		Language:    normalize.Language(description),
		PublishedAt: publishedAt,
	}

	if p.Reactions != nil {
		item.Metrics.Likes = ptr(p.Reactions.Summary.TotalCount)
	}
	if p.Comments != nil {
		item.Metrics.Comments = ptr(p.Comments.Summary.TotalCount)
	}
	if p.Shares != nil {
		item.Metrics.Shares = ptr(p.Shares.Count)
	}

	return item, true
}

// mediaURLs collects distinct image sources from the post and its attachments.
func mediaURLs(p *post) ([]string, bool) {
	var urls []string
	hasVideo := false

	var walk func(atts []attachment)
	walk = func(atts []attachment) {
		for _, a := range atts {
			if a.MediaType == "video" {
				hasVideo = true
			}
			if a.Media != nil && a.Media.Image.Src != "" {
				urls = append(urls, a.Media.Image.Src)
			}
			if a.Subattachments != nil {
				walk(a.Subattachments.Data)
			}
		}
	}

	if p.FullPicture != "" {
		urls = append(urls, p.FullPicture)
	}
	if p.Attachments != nil {
		walk(p.Attachments.Data)
	}
	return normalize.Unique(urls), hasVideo
}

func ptr(v int64) *int64 { return &v }
