package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog record. Quantity is the live inventory
// count; it is decremented by the reconciliation worker and never goes below
// zero.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        *string         `gorm:"column:name" json:"name,omitempty"`
	Description *string         `gorm:"column:description" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	ImageData   []byte          `gorm:"column:image_data" json:"imageData,omitempty"`
	Quantity    int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
