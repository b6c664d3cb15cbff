package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
)

type MessageRepository struct {
	store *Store
}

func NewMessageRepository(store *Store) repositories.MessageRepository {
	return &MessageRepository{store: store}
}

func (r *MessageRepository) Create(_ context.Context, msg *models.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	channel := msg.ChannelKey.String()
	stored := r.store.messages[channel]

	r.store.seq++
	msg.Seq = r.store.seq
	msg.SentAt = r.store.now()
	// часы могли откатиться: время в переписке не убывает, порядок остаётся порядком вставки
	if n := len(stored); n > 0 && msg.SentAt.Before(stored[n-1].SentAt) {
		msg.SentAt = stored[n-1].SentAt
	}
	msg.Read = false

	r.store.messages[channel] = append(r.store.messages[channel], *msg)
	r.store.msgIndex[msg.ID] = channel
	return nil
}

func (r *MessageRepository) FindByChannel(_ context.Context, key models.ChannelKey) ([]models.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.messages[key.String()]
	messages := make([]models.Message, len(stored))
	copy(messages, stored)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Less(&messages[j])
	})
	return messages, nil
}

func (r *MessageRepository) FindLast(_ context.Context, key models.ChannelKey) (*models.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var last *models.Message
	stored := r.store.messages[key.String()]
	for i := range stored {
		if last == nil || last.Less(&stored[i]) {
			last = &stored[i]
		}
	}
	if last == nil {
		return nil, nil
	}
	found := *last
	return &found, nil
}

func (r *MessageRepository) MarkRead(_ context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	channel, ok := r.store.msgIndex[id]
	if !ok {
		return false, nil
	}
	stored := r.store.messages[channel]
	for i := range stored {
		if stored[i].ID == id {
			if stored[i].Read {
				return false, nil
			}
			stored[i].Read = true
			return true, nil
		}
	}
	return false, nil
}
