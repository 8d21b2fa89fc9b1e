package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartSession is the persisted header of one shopper's cart.
type CartSession struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	SessionKey string         `gorm:"column:session_key;type:varchar(96);not null;uniqueIndex:ux_cart_sessions_session_key"`
	IsOpen     bool           `gorm:"column:is_open;not null;default:false"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at;index:ix_cart_sessions_expires_at"`
	Items      []CartLineItem `gorm:"foreignKey:CartSessionID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSession) TableName() string { return "cart_sessions" }

// BeforeCreate assigns the id in Go so SQLite and Postgres behave the same.
func (s *CartSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
