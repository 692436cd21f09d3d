package telegram

import "encoding/json"

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

type update struct {
	UpdateID    int64    `json:"update_id"`
	ChannelPost *message `json:"channel_post"`
	Message     *message `json:"message"`
}

type chat struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Username    string     `json:"username"`
	Description string     `json:"description"`
	Photo       *chatPhoto `json:"photo"`
}

type chatPhoto struct {
	BigFileID string `json:"big_file_id"`
}

type message struct {
	MessageID    int64       `json:"message_id"`
	Chat         chat        `json:"chat"`
	Date         int64       `json:"date"`
	Text         string      `json:"text"`
	Caption      string      `json:"caption"`
	Photo        []photoSize `json:"photo"`
	Video        *video      `json:"video"`
	Views        *int64      `json:"views"`
	ForwardCount *int64      `json:"forward_count"`
}

type photoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type video struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
}
