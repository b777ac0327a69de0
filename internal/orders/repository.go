package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vrapolinario/AIforITOps/pkg/db/models"
)

// Repository exposes persistence operations for orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Upsert persists the order keyed by id. Repeating the call with the same id
// (queue redelivery) replaces the row and, when line items are provided,
// replaces those too rather than duplicating them. An upsert without line
// items updates the order row only and leaves existing items untouched.
func (r *Repository) Upsert(ctx context.Context, order *models.Order) error {
	tx := r.db.WithContext(ctx)

	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}

	if err := tx.
		Omit("Items").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total", "updated_at"}),
		}).
		Create(order).
		Error; err != nil {
		return err
	}

	if len(order.Items) == 0 {
		return nil
	}
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderLineItem{}).Error; err != nil {
		return err
	}
	return tx.Create(&order.Items).Error
}

// List returns every order with its line items, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// FindByID loads one order with its line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
