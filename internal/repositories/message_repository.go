package repositories

import (
	"context"
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	// Create проставляет ID, SentAt и Seq
	Create(ctx context.Context, msg *models.Message) error
	// FindByChannel возвращает сообщения в порядке (SentAt, Seq)
	FindByChannel(ctx context.Context, key models.ChannelKey) ([]models.Message, error)
	// FindLast - последнее сообщение переписки, nil если сообщений нет
	FindLast(ctx context.Context, key models.ChannelKey) (*models.Message, error)
	// MarkRead переключает read false -> true. flipped=true только если переключил именно этот вызов.
	MarkRead(ctx context.Context, id string) (flipped bool, err error)
}

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, msg *models.Message) error {
	// sent_at и seq выдаёт БД (default now() / bigserial), gorm читает их через RETURNING.
	// Нулевые значения gorm в INSERT не передаёт.
	msg.SentAt = time.Time{}
	msg.Seq = 0
	msg.Read = false
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepositoryImpl) FindByChannel(ctx context.Context, key models.ChannelKey) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("channel_key = ?", key.String()).
		Order("sent_at ASC, seq ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) FindLast(ctx context.Context, key models.ChannelKey) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("channel_key = ?", key.String()).
		Order("sent_at DESC, seq DESC").
		Limit(1).
		Take(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepositoryImpl) MarkRead(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
