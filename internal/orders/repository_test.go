package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vrapolinario/AIforITOps/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Order{}, &models.OrderLineItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:        uuid.New(),
		Total:     decimal.RequireFromString("20.00"),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Items: []models.OrderLineItem{
			{
				ProductID: uuid.New(),
				Name:      "Oak Table",
				UnitPrice: decimal.RequireFromString("10.00"),
				Quantity:  2,
			},
		},
	}
}

func TestUpsertIsIdempotentOnOrderID(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := sampleOrder()
	if err := repo.Upsert(ctx, order); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	// Redelivery re-runs the same upsert with the same id.
	if err := repo.Upsert(ctx, order); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected a single order after redelivery, got %d", len(list))
	}
	if len(list[0].Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(list[0].Items))
	}
	if !list[0].Total.Equal(order.Total) {
		t.Fatalf("expected total %s, got %s", order.Total, list[0].Total)
	}
}

func TestUpsertWithoutItemsKeepsExistingItems(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := sampleOrder()
	if err := repo.Upsert(ctx, order); err != nil {
		t.Fatalf("checkout upsert: %v", err)
	}

	// The reconciliation path rewrites the order head from the queue
	// payload, which carries no line item snapshots.
	head := &models.Order{
		ID:        order.ID,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	if err := repo.Upsert(ctx, head); err != nil {
		t.Fatalf("head upsert: %v", err)
	}

	fetched, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(fetched.Items) != 1 {
		t.Fatalf("line items must survive a head-only upsert, got %d", len(fetched.Items))
	}
}

func TestFindByIDLoadsItems(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := sampleOrder()
	if err := repo.Upsert(ctx, order); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	fetched, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(fetched.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(fetched.Items))
	}
	if fetched.Items[0].Quantity != 2 {
		t.Fatalf("unexpected quantity %d", fetched.Items[0].Quantity)
	}
}
