package realtime

import (
	"context"
	"strings"

	"jobboard_backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBroker разносит сигналы между инстансами через redis pub/sub.
// Локальные подписчики живут в Hub; Publish уходит в redis и возвращается
// к каждому инстансу (включая этот) через PSubscribe.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	prefix string
}

func NewRedisBroker(client *redis.Client, hub *Hub, prefix string) *RedisBroker {
	if prefix == "" {
		prefix = "jobboard"
	}
	return &RedisBroker{client: client, hub: hub, prefix: prefix}
}

func (b *RedisBroker) channel(topic string) string {
	return b.prefix + ":" + topic
}

func (b *RedisBroker) Publish(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, b.channel(topic), "changed").Err(); err != nil {
		// свои подписчики всё равно должны узнать об изменении
		b.hub.Notify(topic)
		return err
	}
	return nil
}

func (b *RedisBroker) Subscribe(topic string) Listener {
	return b.hub.Subscribe(topic)
}

// Run слушает redis до отмены ctx
func (b *RedisBroker) Run(ctx context.Context) {
	pubsub := b.client.PSubscribe(ctx, b.prefix+":*")
	defer pubsub.Close()

	prefix := b.prefix + ":"
	logger.Info("Redis broker subscribed", "pattern", prefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				logger.Warn("Redis broker channel closed")
				return
			}
			b.hub.Notify(strings.TrimPrefix(msg.Channel, prefix))
		}
	}
}
