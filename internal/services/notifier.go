package services

import (
	"context"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
)

// Notifier получает событие "новое сообщение" ровно один раз на сообщение:
// когда подписка получателя переключила его в прочитанное.
type Notifier interface {
	NewMessage(ctx context.Context, recipientID string, msg models.Message)
}

// LogNotifier пишет событие в лог
type LogNotifier struct{}

func (LogNotifier) NewMessage(ctx context.Context, recipientID string, msg models.Message) {
	logger.CtxInfo(ctx, "New message",
		"recipient_id", recipientID,
		"message_id", msg.ID,
		"channel", msg.ChannelKey.String(),
	)
}

// Notifiers рассылает событие всем получателям
type Notifiers []Notifier

func (ns Notifiers) NewMessage(ctx context.Context, recipientID string, msg models.Message) {
	for _, n := range ns {
		if n != nil {
			n.NewMessage(ctx, recipientID, msg)
		}
	}
}
