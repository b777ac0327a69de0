package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vrapolinario/AIforITOps/internal/cart"
	"github.com/vrapolinario/AIforITOps/internal/events"
	"github.com/vrapolinario/AIforITOps/pkg/db/models"
	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

type stubCarts struct {
	items    []cart.Item
	getErr   error
	cleared  int
	clearErr error
}

func (s *stubCarts) Get(_ context.Context, _ string) ([]cart.Item, error) {
	return s.items, s.getErr
}

func (s *stubCarts) Clear(_ context.Context, _ string) error {
	s.cleared++
	return s.clearErr
}

type stubOrders struct {
	upserted []*models.Order
	err      error
}

func (s *stubOrders) Upsert(_ context.Context, order *models.Order) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = append(s.upserted, order)
	return nil
}

type stubPublisher struct {
	published []any
	err       error
}

func (s *stubPublisher) Publish(_ context.Context, payload any) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, payload)
	return nil
}

func cartItem(name string, price string, qty int) cart.Item {
	return cart.Item{
		Product: models.Product{
			ID:    uuid.New(),
			Name:  &name,
			Price: decimal.RequireFromString(price),
		},
		Quantity: qty,
	}
}

func newTestService(t *testing.T, carts *stubCarts, orders *stubOrders, pub *stubPublisher) Service {
	t.Helper()
	svc, err := NewService(carts, orders, pub, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestExecuteProducesOrderAndEvent(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{items: []cart.Item{
		cartItem("Table", "10.00", 2),
		cartItem("Lamp", "5.50", 1),
	}}
	orders := &stubOrders{}
	pub := &stubPublisher{}
	svc := newTestService(t, carts, orders, pub)

	order, err := svc.Execute(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if order == nil {
		t.Fatal("expected an order")
	}

	want := decimal.RequireFromString("25.50")
	if !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}
	if len(orders.upserted) != 1 {
		t.Fatalf("expected exactly one order write, got %d", len(orders.upserted))
	}
	if carts.cleared != 1 {
		t.Fatalf("expected cart cleared once, got %d", carts.cleared)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	event, ok := pub.published[0].(events.OrderPlaced)
	if !ok {
		t.Fatalf("unexpected payload type %T", pub.published[0])
	}
	if event.ID != order.ID.String() {
		t.Fatal("event id must match order id")
	}
	if len(event.Items) != 2 {
		t.Fatalf("expected 2 item refs, got %d", len(event.Items))
	}
	if event.Items[0].ProductID != carts.items[0].Product.ID.String() || event.Items[0].Quantity != 2 {
		t.Fatal("event items must reference cart products by id")
	}
}

func TestExecuteEmptyCartIsNoOp(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{items: []cart.Item{}}
	orders := &stubOrders{}
	pub := &stubPublisher{}
	svc := newTestService(t, carts, orders, pub)

	order, err := svc.Execute(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if order != nil {
		t.Fatal("empty cart must not produce an order")
	}
	if len(orders.upserted) != 0 || len(pub.published) != 0 {
		t.Fatal("empty cart must not touch the store or the queue")
	}
	if carts.cleared != 0 {
		t.Fatal("empty cart must not be cleared")
	}
}

func TestExecutePersistFailureKeepsCart(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{items: []cart.Item{cartItem("Table", "10.00", 1)}}
	orders := &stubOrders{err: errors.New("store unavailable")}
	pub := &stubPublisher{}
	svc := newTestService(t, carts, orders, pub)

	_, err := svc.Execute(context.Background(), "sess-1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if carts.cleared != 0 {
		t.Fatal("cart must be retained when the order write fails")
	}
	if len(pub.published) != 0 {
		t.Fatal("nothing may be published when the order write fails")
	}
}

func TestExecutePublishFailureIsSwallowedAndCartCleared(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{items: []cart.Item{cartItem("Table", "10.00", 1)}}
	orders := &stubOrders{}
	pub := &stubPublisher{err: errors.New("queue unavailable")}
	svc := newTestService(t, carts, orders, pub)

	order, err := svc.Execute(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("publish failures must not surface: %v", err)
	}
	if order == nil {
		t.Fatal("order must still be returned")
	}
	if len(orders.upserted) != 1 {
		t.Fatal("order must be persisted before the publish attempt")
	}
	if carts.cleared != 1 {
		t.Fatal("cart must be cleared even when the publish fails")
	}
}

func TestExecuteUsesSnapshotPrices(t *testing.T) {
	t.Parallel()

	item := cartItem("Table", "10.00", 2)
	carts := &stubCarts{items: []cart.Item{item}}
	orders := &stubOrders{}
	pub := &stubPublisher{}
	svc := newTestService(t, carts, orders, pub)

	order, err := svc.Execute(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !order.Items[0].UnitPrice.Equal(item.Product.Price) {
		t.Fatal("line item must carry the cart snapshot price")
	}
	if !order.Total.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected total %s", order.Total)
	}
}
