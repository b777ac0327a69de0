package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vrapolinario/AIforITOps/api/middleware"
	"github.com/vrapolinario/AIforITOps/api/responses"
	"github.com/vrapolinario/AIforITOps/api/validators"
	cartsvc "github.com/vrapolinario/AIforITOps/internal/cart"
	"github.com/vrapolinario/AIforITOps/internal/catalog"
	"github.com/vrapolinario/AIforITOps/internal/checkout"
	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type cartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func sessionFromRequest(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session missing")
	}
	return sessionID, nil
}

// GetCart returns the session's cart contents.
func GetCart(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := carts.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// AddToCart snapshots the requested product into the session cart.
func AddToCart(carts cartsvc.Service, products catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := products.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := carts.Add(r.Context(), sessionID, *product, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// IncreaseCartItem bumps one line's quantity by one.
func IncreaseCartItem(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutation(carts, logg, func(r *http.Request, sessionID string, productID uuid.UUID) ([]cartsvc.Item, error) {
		return carts.Increase(r.Context(), sessionID, productID)
	})
}

// RemoveCartItem drops one line from the cart.
func RemoveCartItem(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutation(carts, logg, func(r *http.Request, sessionID string, productID uuid.UUID) ([]cartsvc.Item, error) {
		return carts.Remove(r.Context(), sessionID, productID)
	})
}

func cartMutation(carts cartsvc.Service, logg *logger.Logger, mutate func(*http.Request, string, uuid.UUID) ([]cartsvc.Item, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		items, err := mutate(r, sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// Checkout converts the session cart into an order. Checking out an empty
// cart is a no-op that reports an empty order list.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order == nil {
			responses.WriteSuccess(w, map[string]string{"status": "cart empty"})
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
