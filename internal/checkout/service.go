package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vrapolinario/AIforITOps/internal/cart"
	"github.com/vrapolinario/AIforITOps/internal/events"
	"github.com/vrapolinario/AIforITOps/pkg/db/models"
	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

// Service converts a session cart into a persisted order plus a queued
// inventory event.
type Service interface {
	Execute(ctx context.Context, sessionID string) (*models.Order, error)
}

type cartService interface {
	Get(ctx context.Context, sessionID string) ([]cart.Item, error)
	Clear(ctx context.Context, sessionID string) error
}

type orderWriter interface {
	Upsert(ctx context.Context, order *models.Order) error
}

type eventPublisher interface {
	Publish(ctx context.Context, payload any) error
}

type service struct {
	carts     cartService
	orders    orderWriter
	publisher eventPublisher
	logg      *logger.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

// NewService builds the checkout service.
func NewService(carts cartService, orders orderWriter, publisher eventPublisher, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
		newID:     uuid.New,
	}, nil
}

// Execute runs the checkout workflow. The order write must succeed before
// anything else happens; the event publish is best effort, and the cart is
// cleared after the publish attempt either way. A publish failure therefore
// leaves a persisted order whose inventory is never reconciled.
func (s *service) Execute(ctx context.Context, sessionID string) (*models.Order, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	items, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	total := decimal.Zero
	lineItems := make([]models.OrderLineItem, 0, len(items))
	eventItems := make([]events.OrderItemRef, 0, len(items))
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		name := ""
		if item.Product.Name != nil {
			name = *item.Product.Name
		}
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID: item.Product.ID,
			Name:      name,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
		})
		eventItems = append(eventItems, events.OrderItemRef{
			ProductID: item.Product.ID.String(),
			Quantity:  item.Quantity,
		})
	}

	order := &models.Order{
		ID:        s.newID(),
		Total:     total,
		CreatedAt: s.now().UTC(),
		Items:     lineItems,
	}

	if err := s.orders.Upsert(ctx, order); err != nil {
		// The cart stays intact so the user can retry.
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
	}

	event := events.OrderPlaced{
		ID:        order.ID.String(),
		Items:     eventItems,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The user-facing path never blocks on the queue: the order is
		// already durable, so the failure is logged and swallowed.
		s.logg.Error(logCtx, "failed to publish order event", err)
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logg.Error(logCtx, "failed to clear cart after checkout", err)
	}

	s.logg.Info(logCtx, "checkout completed")
	return order, nil
}
