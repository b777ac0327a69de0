package inventory

import (
	"context"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vrapolinario/AIforITOps/internal/events"
	"github.com/vrapolinario/AIforITOps/pkg/db/models"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
	"github.com/vrapolinario/AIforITOps/pkg/metrics"
)

const (
	skipReasonBadProductID   = "bad_product_id"
	skipReasonMissingProduct = "missing_product"
)

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Upsert(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepository interface {
	Upsert(ctx context.Context, order *models.Order) error
}

// Consumer reconciles inventory from the shared orders channel. Two payload
// shapes travel on the same subscription: order-placed events from checkout
// and legacy single-product catalog actions.
type Consumer struct {
	products     productRepository
	orders       orderRepository
	subscription *pubsub.Subscriber
	logg         *logger.Logger
	metrics      *metrics.WorkerMetrics
}

// NewConsumer wires the reconciliation dependencies.
func NewConsumer(products productRepository, orders orderRepository, subscription *pubsub.Subscriber, logg *logger.Logger, workerMetrics *metrics.WorkerMetrics) (*Consumer, error) {
	if products == nil {
		return nil, errors.New("product repository is required")
	}
	if orders == nil {
		return nil, errors.New("order repository is required")
	}
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		products:     products,
		orders:       orders,
		subscription: subscription,
		logg:         logg,
		metrics:      workerMetrics,
	}, nil
}

// Run processes messages until the context is canceled or the subscription
// errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			c.metrics.IncMessage(metrics.OutcomeRetried)
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	decoded, err := events.Decode(msg.Data)
	if err != nil {
		// Unparseable payloads are dropped: redelivering them would loop
		// forever. The counter keeps the drop visible.
		c.logg.Error(logCtx, "dropping unrecognized payload", err)
		c.metrics.IncMessage(metrics.OutcomeMalformed)
		return processResult{ack: true}
	}

	if decoded.Order != nil {
		return c.processOrder(logCtx, decoded.Order)
	}
	return c.processProductAction(logCtx, decoded.Action)
}

// processOrder persists the order and walks its line items, decrementing
// stock with a floor of zero. The decrement is not guarded by a delivery
// token: a redelivered message decrements the same stock again.
func (c *Consumer) processOrder(ctx context.Context, event *events.OrderPlaced) processResult {
	logCtx := c.logg.WithOrderID(ctx, event.ID)

	orderID, err := uuid.Parse(event.ID)
	if err != nil {
		c.logg.Error(logCtx, "order event carries an invalid id", err)
		c.metrics.IncMessage(metrics.OutcomeMalformed)
		return processResult{ack: true}
	}

	order := &models.Order{
		ID:        orderID,
		Total:     event.Total,
		CreatedAt: event.CreatedAt,
	}
	if err := c.orders.Upsert(logCtx, order); err != nil {
		return c.handleStoreError(logCtx, err)
	}

	for _, item := range event.Items {
		itemCtx := c.logg.WithFields(logCtx, map[string]any{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		})

		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			c.logg.Warn(itemCtx, "skipping line item with invalid product id")
			c.metrics.IncSkippedItem(skipReasonBadProductID)
			continue
		}

		product, err := c.products.FindByID(itemCtx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.logg.Warn(itemCtx, "skipping line item for unknown product")
				c.metrics.IncSkippedItem(skipReasonMissingProduct)
				continue
			}
			return c.handleStoreError(itemCtx, err)
		}

		product.Quantity -= item.Quantity
		if product.Quantity < 0 {
			product.Quantity = 0
		}
		if err := c.products.Upsert(itemCtx, product); err != nil {
			return c.handleStoreError(itemCtx, err)
		}
	}

	c.logg.Info(logCtx, "reconciled order")
	c.metrics.IncMessage(metrics.OutcomeOrderProcessed)
	return processResult{ack: true}
}

func (c *Consumer) processProductAction(ctx context.Context, action *events.ProductAction) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"action":     action.Action,
		"product_id": action.Product.ID.String(),
	})

	switch action.Action {
	case events.ActionAdd, events.ActionEdit:
		product := action.Product
		if product.ID == uuid.Nil {
			// Only a brand-new product may mint its own id. An edit must
			// name the row it targets.
			if action.Action == events.ActionEdit {
				c.logg.Warn(logCtx, "edit action without a product id")
				c.metrics.IncMessage(metrics.OutcomeMalformed)
				return processResult{ack: true}
			}
			product.ID = uuid.New()
		}
		if err := c.products.Upsert(logCtx, &product); err != nil {
			return c.handleStoreError(logCtx, err)
		}
	case events.ActionDelete:
		if action.Product.ID == uuid.Nil {
			c.logg.Warn(logCtx, "delete action without a product id")
			c.metrics.IncMessage(metrics.OutcomeMalformed)
			return processResult{ack: true}
		}
		if err := c.products.Delete(logCtx, action.Product.ID); err != nil {
			return c.handleStoreError(logCtx, err)
		}
	}

	c.logg.Info(logCtx, "applied product action")
	c.metrics.IncMessage(metrics.OutcomeProductAction)
	return processResult{ack: true}
}

// handleStoreError nacks the message so Pub/Sub redelivers it. Store
// failures are treated as retryable; the terminal cases (unparseable
// payload, invalid or unknown product id) are acked before reaching here.
func (c *Consumer) handleStoreError(ctx context.Context, err error) processResult {
	c.logg.Error(ctx, "reconciliation store error", err)
	return processResult{nack: true}
}
