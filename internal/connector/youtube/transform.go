package youtube

import (
	"time"

	yt "google.golang.org/api/youtube/v3"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/normalize"
)

func transform(v *yt.Video) (domain.ContentItem, bool) {
	if v == nil || v.Id == "" || v.Snippet == nil {
		return domain.ContentItem{}, false
	}
	sn := v.Snippet

	publishedAt, err := time.Parse(time.RFC3339, sn.PublishedAt)
	if err != nil {
		return domain.ContentItem{}, false
	}

	title := normalize.Text(sn.Title)
	description := normalize.Text(sn.Description)

	item := domain.ContentItem{
		Platform:     domain.PlatformYouTube,
		PlatformID:   v.Id,
		Type:         domain.ContentVideo,
		Title:        title,
		Description:  description,
		ThumbnailURL: thumbnail(sn.Thumbnails),
		ContentURL:   "https://www.youtube.com/watch?v=" + v.Id,
		EmbedURL:     "https://www.youtube.com/embed/" + v.Id,
		Author: domain.Author{
			ID:         sn.ChannelId,
			Name:       sn.ChannelTitle,
			Handle:     sn.ChannelTitle,
			ProfileURL: "https://www.youtube.com/channel/" + sn.ChannelId,
		},
		Tags:        normalize.Unique(normalize.Hashtags(sn.Title+" "+sn.Description), sn.Tags),
		Language:    normalize.Language(title),
		PublishedAt: publishedAt,
	}

	if st := v.Statistics; st != nil {
		item.Metrics.Views = count(st.ViewCount)
		item.Metrics.Likes = count(st.LikeCount)
		item.Metrics.Comments = count(st.CommentCount)
	}

	return item, true
}

func thumbnail(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*yt.Thumbnail{t.Maxres, t.High, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

func count(n uint64) *int64 {
	v := int64(n)
	return &v
}
