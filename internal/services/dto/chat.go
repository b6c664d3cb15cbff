package dto

import "jobboard_backend/internal/models"

// SendMessageRequest - пустой текст отклоняет сервис
type SendMessageRequest struct {
	Text string `json:"text"`
}

type MessageListResponse struct {
	ChannelKey string           `json:"channel_key"`
	Messages   []models.Message `json:"messages"`
	Total      int              `json:"total"`
}
