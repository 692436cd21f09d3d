package connector

import (
	"context"

	"content_fetcher/internal/domain"
)

const (
	DefaultStallLimit = 3
	DefaultMaxPages   = 100
)

// Pager drives a sequential page or scroll loop and decides when it stops:
// on MaxItems, after StallLimit iterations without a new identity, after
// MaxPages iterations, or when the context is done.
//
//	p := connector.NewPager(opts.MaxItems)
//	for p.Next(ctx) {
//		p.Add(loadPage())
//	}
//	return p.Items(), p.Err()
type Pager struct {
	MaxItems   int
	StallLimit int
	MaxPages   int

	seen   map[string]struct{}
	items  []domain.ContentItem
	pages  int
	stalls int
	done   bool
	err    error
}

func NewPager(maxItems int) *Pager {
	return &Pager{
		MaxItems:   maxItems,
		StallLimit: DefaultStallLimit,
		MaxPages:   DefaultMaxPages,
		seen:       make(map[string]struct{}),
	}
}

// Next reports whether another page should be requested.
func (p *Pager) Next(ctx context.Context) bool {
	if p.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		p.err = err
		p.done = true
		return false
	}
	if p.full() || p.stalls >= p.StallLimit || (p.MaxPages > 0 && p.pages >= p.MaxPages) {
		p.done = true
		return false
	}
	return true
}

// Add records one page. Items without an id or already seen are skipped.
// It returns the number of new items taken from the page.
func (p *Pager) Add(page []domain.ContentItem) int {
	p.pages++
	added := 0
	for _, item := range page {
		if p.full() {
			break
		}
		if item.PlatformID == "" {
			continue
		}
		if _, ok := p.seen[item.PlatformID]; ok {
			continue
		}
		p.seen[item.PlatformID] = struct{}{}
		p.items = append(p.items, item)
		added++
	}
	if added == 0 {
		p.stalls++
	} else {
		p.stalls = 0
	}
	return added
}

// Stop ends the loop, e.g. when the source reports no further page.
func (p *Pager) Stop() { p.done = true }

func (p *Pager) Items() []domain.ContentItem { return p.items }

// Err is the context error that ended the loop, if any.
func (p *Pager) Err() error { return p.err }

func (p *Pager) full() bool {
	return p.MaxItems > 0 && len(p.items) >= p.MaxItems
}
