package instagram

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/normalize"
)

var shortcodeRe = regexp.MustCompile(`/(p|reel)/([^/?#]+)`)

func loginWall(doc *goquery.Document) bool {
	return doc.Find(`input[name="username"]`).Length() > 0
}

func ogContent(doc *goquery.Document, property string) string {
	v, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(v)
}

// displayName takes "Name (@handle) • Instagram photos and videos" down to "Name".
func displayName(doc *goquery.Document) string {
	title := ogContent(doc, "og:title")
	if i := strings.Index(title, "("); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

func ownerFromDoc(doc *goquery.Document, username string) domain.Author {
	name := displayName(doc)
	if name == "" {
		name = username
	}
	return domain.Author{
		ID:         username,
		Name:       name,
		Handle:     username,
		AvatarURL:  ogContent(doc, "og:image"),
		ProfileURL: profileURL(username),
	}
}

func parseProfileInfo(doc *goquery.Document, username string) *domain.SourceInfo {
	name := displayName(doc)
	if name == "" {
		return nil
	}
	info := &domain.SourceInfo{
		ID:        username,
		Name:      name,
		URL:       profileURL(username),
		AvatarURL: ogContent(doc, "og:image"),
	}
	// og:description starts with "12.3K Followers, 10 Following, ...".
	if desc := ogContent(doc, "og:description"); desc != "" {
		if followers, _, ok := strings.Cut(desc, " Followers"); ok {
			info.SubscriberCount = normalize.Count(followers)
		}
	}
	return info
}

func parseGrid(doc *goquery.Document, owner domain.Author, title string, now time.Time) []domain.ContentItem {
	var items []domain.ContentItem
	doc.Find(`article a[href*="/p/"], article a[href*="/reel/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := shortcodeRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		kind, shortcode := m[1], m[2]

		img := s.Find("img").First()
		thumbnail, _ := img.Attr("src")
		caption := normalize.Text(img.AttrOr("alt", ""))

		contentType := domain.ContentImage
		if kind == "reel" {
			contentType = domain.ContentReel
		}

		item := domain.ContentItem{
			Platform:     domain.PlatformInstagram,
			PlatformID:   shortcode,
			Type:         contentType,
			Title:        title,
			Description:  caption,
			ThumbnailURL: thumbnail,
			ContentURL:   baseURL + "/" + kind + "/" + shortcode + "/",
			EmbedURL:     baseURL + "/" + kind + "/" + shortcode + "/embed",
			Author:       owner,
			Tags:         normalize.Hashtags(caption),
			Language:     "he",
			PublishedAt:  now,
		}
		if thumbnail != "" {
			item.MediaURLs = []string{thumbnail}
		}
		items = append(items, item)
	})
	return items
}
