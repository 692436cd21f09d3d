package transport

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_fetcher/internal/domain"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		req   FetchRequest
		field string
	}{
		{"valid source", FetchRequest{Platform: "youtube", SourceID: "UC1"}, ""},
		{"valid search", FetchRequest{Platform: "x", SearchQuery: "elections"}, ""},
		{"missing platform", FetchRequest{SourceID: "UC1"}, "platform"},
		{"missing source and query", FetchRequest{Platform: "youtube"}, "sourceId"},
		{"bad source type", FetchRequest{Platform: "youtube", SourceID: "a", SourceType: "page"}, "sourceType"},
		{"negative max items", FetchRequest{Platform: "youtube", SourceID: "a", MaxItems: -1}, "maxItems"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestFetchRequest_Spec(t *testing.T) {
	req := FetchRequest{Platform: "tiktok", SearchQuery: "news", SourceType: "hashtag", MaxItems: 20}
	assert.Equal(t, domain.JobSpec{
		Platform:    domain.PlatformTikTok,
		SearchQuery: "news",
		SourceType:  domain.SourceHashtag,
		MaxItems:    20,
	}, req.Spec())
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(&domain.ValidationError{Field: "platform"}))
	assert.True(t, IsClientError(fmt.Errorf("run: %w", &domain.ConfigurationError{Platform: "myspace"})))
	assert.False(t, IsClientError(errors.New("boom")))
	assert.False(t, IsClientError(&domain.PersistenceError{Err: errors.New("down")}))
}
