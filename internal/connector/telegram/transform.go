package telegram

import (
	"fmt"
	"strconv"
	"time"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/normalize"
)

func messageText(m *message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

func transformMessage(m *message) domain.ContentItem {
	text := normalize.Text(messageText(m))

	contentType := domain.ContentText
	switch {
	case m.Video != nil:
		contentType = domain.ContentVideo
	case len(m.Photo) > 0:
		contentType = domain.ContentImage
	}

	return domain.ContentItem{
		Platform:    domain.PlatformTelegram,
		PlatformID:  fmt.Sprintf("%d_%d", m.Chat.ID, m.MessageID),
		Type:        contentType,
		Title:       normalize.Truncate(text, 100),
		Description: text,
		ContentURL:  fmt.Sprintf("%s/%d", chatURL(m.Chat), m.MessageID),
		Author: domain.Author{
			ID:         strconv.FormatInt(m.Chat.ID, 10),
			Name:       m.Chat.Title,
			Handle:     m.Chat.Username,
			ProfileURL: chatURL(m.Chat),
		},
		Metrics: domain.Metrics{
			Views:  m.Views,
			Shares: m.ForwardCount,
		},
		Tags:        normalize.Hashtags(text),
		Language:    normalize.Language(text),
		PublishedAt: time.Unix(m.Date, 0).UTC(),
	}
}
