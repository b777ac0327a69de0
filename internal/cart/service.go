package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vrapolinario/AIforITOps/pkg/db/models"
	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
	"github.com/vrapolinario/AIforITOps/pkg/redis"
)

// Item is one cart line: a full product snapshot plus the requested quantity.
// The snapshot price is what checkout later charges, even if the catalog
// price changes in the meantime.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Service owns the session-scoped cart stored in Redis.
type Service interface {
	Get(ctx context.Context, sessionID string) ([]Item, error)
	Add(ctx context.Context, sessionID string, product models.Product, quantity int) ([]Item, error)
	Increase(ctx context.Context, sessionID string, productID uuid.UUID) ([]Item, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) ([]Item, error)
	Clear(ctx context.Context, sessionID string) error
}

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type service struct {
	store store
	ttl   time.Duration
}

// NewService builds the cart service on top of the shared Redis client.
func NewService(st store, ttl time.Duration) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{store: st, ttl: ttl}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) ([]Item, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	raw, err := s.store.Get(ctx, redis.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return []Item{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart")
	}
	return items, nil
}

func (s *service) Add(ctx context.Context, sessionID string, product models.Product, quantity int) ([]Item, error) {
	if quantity < 1 {
		quantity = 1
	}
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].Product.ID == product.ID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, Item{Product: product, Quantity: quantity})
	}

	if err := s.save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *service) Increase(ctx context.Context, sessionID string, productID uuid.UUID) ([]Item, error) {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity++
			if err := s.save(ctx, sessionID, items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	// Bumping an item that fell out of the cart is a no-op.
	return items, nil
}

func (s *service) Remove(ctx context.Context, sessionID string, productID uuid.UUID) ([]Item, error) {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}

	if err := s.save(ctx, sessionID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.store.Del(ctx, redis.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func (s *service) save(ctx context.Context, sessionID string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.store.Set(ctx, redis.CartKey(sessionID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}
