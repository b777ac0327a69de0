package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vrapolinario/AIforITOps/pkg/db/models"
)

// OrderPlaced is the lightweight queue payload produced by checkout. It
// carries only product references and quantities so message size stays
// bounded regardless of catalog image blobs.
type OrderPlaced struct {
	ID        string          `json:"id"`
	Items     []OrderItemRef  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderItemRef references one requested product by id.
type OrderItemRef struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Product catalog actions carried by the legacy message shape.
const (
	ActionAdd    = "Add"
	ActionEdit   = "Edit"
	ActionDelete = "Delete"
)

// ProductAction is the legacy message shape sharing the orders channel: a
// single catalog mutation against one product.
type ProductAction struct {
	Action  string         `json:"action"`
	Product models.Product `json:"product"`
}

// ErrUnknownShape marks a payload that decodes as neither message shape.
var ErrUnknownShape = errors.New("payload matches no known message shape")

// Decoded is the tagged union produced by probing a raw payload. Exactly one
// of Order/Action is set.
type Decoded struct {
	Order  *OrderPlaced
	Action *ProductAction
}

// Decode probes the payload: order shape first, falling back to the legacy
// product action shape when the items list is missing. A payload that fits
// neither returns ErrUnknownShape.
func Decode(data []byte) (Decoded, error) {
	var order OrderPlaced
	if err := json.Unmarshal(data, &order); err == nil && order.Items != nil {
		return Decoded{Order: &order}, nil
	}

	var action ProductAction
	if err := json.Unmarshal(data, &action); err == nil && validAction(action.Action) {
		return Decoded{Action: &action}, nil
	}

	return Decoded{}, ErrUnknownShape
}

func validAction(action string) bool {
	switch action {
	case ActionAdd, ActionEdit, ActionDelete:
		return true
	default:
		return false
	}
}
