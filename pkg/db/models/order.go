package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the persisted checkout result. CreatedAt is set once at checkout
// and never changes; the worker re-upserts the same row on redelivery.
type Order struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Items     []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time       `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// OrderLineItem captures the product snapshot taken at checkout time. The
// unit price is the cart price, not a re-read of the catalog.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
