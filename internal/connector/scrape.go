package connector

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"content_fetcher/internal/domain"
)

// Renderer loads a page in a browser and hands its HTML to visit after the
// first load and after each scroll, until visit returns false.
type Renderer interface {
	Render(ctx context.Context, url string, visit func(html string) bool) error
}

// ParseFunc extracts items from one HTML snapshot. stop ends scrolling early,
// for instance when the page turned out to be a login wall.
type ParseFunc func(doc *goquery.Document) (items []domain.ContentItem, stop bool)

// Scrape renders url and scrolls until the Pager stops it, collecting parsed items.
func Scrape(ctx context.Context, r Renderer, url string, opts domain.FetchOptions, maxScrolls int, parse ParseFunc) ([]domain.ContentItem, error) {
	pager := NewPager(opts.MaxItems)
	if maxScrolls > 0 {
		pager.MaxPages = maxScrolls
	}

	var parseErr error
	err := r.Render(ctx, url, func(html string) bool {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			parseErr = err
			return false
		}
		items, stop := parse(doc)
		if opts.Since != nil {
			items = publishedSince(items, *opts.Since)
		}
		pager.Add(items)
		return !stop && pager.Next(ctx)
	})
	if err == nil {
		err = parseErr
	}
	return pager.Items(), err
}

func publishedSince(items []domain.ContentItem, since time.Time) []domain.ContentItem {
	kept := items[:0]
	for _, it := range items {
		if !it.PublishedAt.Before(since) {
			kept = append(kept, it)
		}
	}
	return kept
}
