package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate выдаёт ID, если вызывающий код его не задал
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	b.EnsureID()
	return nil
}

// EnsureID нужен in-memory хранилищу, у которого нет gorm-хуков
func (b *BaseModel) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
}
