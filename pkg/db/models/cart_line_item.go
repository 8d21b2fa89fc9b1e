package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLineItem persists one product snapshot inside a CartSession. Position
// keeps insertion order stable across reloads.
type CartLineItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartSessionID uuid.UUID       `gorm:"column:cart_session_id;type:uuid;not null;uniqueIndex:ux_cart_line_items_session_product,priority:1"`
	ProductID     string          `gorm:"column:product_id;type:varchar(128);not null;uniqueIndex:ux_cart_line_items_session_product,priority:2"`
	Position      int             `gorm:"column:position;not null"`
	Title         string          `gorm:"column:title;not null"`
	VendorName    string          `gorm:"column:vendor_name;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	ImageURL      *string         `gorm:"column:image_url"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (CartLineItem) TableName() string { return "cart_line_items" }

func (i *CartLineItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
