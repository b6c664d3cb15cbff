// Package realtime - сигналы "топик изменился" для живых подписок.
// Сигнал не несёт данных: подписчик сам перечитывает хранилище.
package realtime

import (
	"context"

	"jobboard_backend/internal/models"
)

// Broker рассылает сигналы об изменениях по топикам
type Broker interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(topic string) Listener
}

// Listener - одна подписка на топик. Сигналы схлопываются:
// пока подписчик не прочитал C(), новые сигналы не копятся.
type Listener interface {
	C() <-chan struct{}
	// Close идемпотентен
	Close()
}

// ChannelTopic - изменения сообщений переписки
func ChannelTopic(key models.ChannelKey) string {
	return "chat:" + key.String()
}

// UserTopic - изменения откликов, касающихся пользователя (статусы, новые отклики)
func UserTopic(userID string) string {
	return "user:" + userID
}
