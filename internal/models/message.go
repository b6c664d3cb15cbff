package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message - сообщение в переписке по отклику.
// SentAt и Seq проставляет хранилище; порядок выдачи (SentAt, Seq).
type Message struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelKey ChannelKey `gorm:"type:varchar(255);not null;index:idx_messages_channel_order,priority:1" json:"channel_key"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	SenderID   string     `gorm:"type:varchar(128);not null" json:"sender_id"`
	SentAt     time.Time  `gorm:"not null;default:now();index:idx_messages_channel_order,priority:2" json:"sent_at"`
	Seq        int64      `gorm:"autoIncrement;not null;index:idx_messages_channel_order,priority:3" json:"seq"`
	Read       bool       `gorm:"column:is_read;not null;default:false" json:"read"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IsUnreadFor - непрочитанное входящее для viewerID
func (m *Message) IsUnreadFor(viewerID string) bool {
	return !m.Read && m.SenderID != viewerID
}

// Less задаёт порядок сообщений в переписке
func (m *Message) Less(other *Message) bool {
	if m.SentAt.Equal(other.SentAt) {
		return m.Seq < other.Seq
	}
	return m.SentAt.Before(other.SentAt)
}
