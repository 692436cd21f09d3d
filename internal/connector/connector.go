package connector

//go:generate mockgen -source=connector.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"sort"

	"content_fetcher/internal/domain"
)

// Connector is implemented once per platform. Items it returns are already
// normalized, carry an identity and number at most opts.MaxItems.
// Failures are reported as *domain.SourceError.
type Connector interface {
	Platform() domain.Platform
	FetchContent(ctx context.Context, sourceID string, opts domain.FetchOptions) ([]domain.ContentItem, error)
	SearchContent(ctx context.Context, query string, opts domain.FetchOptions) ([]domain.ContentItem, error)
	// GetSourceInfo returns nil, nil when the source cannot be resolved.
	GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error)
	ValidateCredentials(ctx context.Context) bool
}

// Registry maps a platform to its connector. It is read-only after NewRegistry.
type Registry struct {
	connectors map[domain.Platform]Connector
}

func NewRegistry(connectors ...Connector) (*Registry, error) {
	r := &Registry{connectors: make(map[domain.Platform]Connector, len(connectors))}
	for _, c := range connectors {
		p := c.Platform()
		if _, dup := r.connectors[p]; dup {
			return nil, fmt.Errorf("register %s: duplicate connector", p)
		}
		r.connectors[p] = c
	}
	return r, nil
}

func (r *Registry) Resolve(platform domain.Platform) (Connector, error) {
	c, ok := r.connectors[platform]
	if !ok {
		return nil, &domain.ConfigurationError{Platform: platform}
	}
	return c, nil
}

func (r *Registry) Platforms() []domain.Platform {
	out := make([]domain.Platform, 0, len(r.connectors))
	for p := range r.connectors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Capped trims items to max when max is positive.
func Capped(items []domain.ContentItem, max int) []domain.ContentItem {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}
