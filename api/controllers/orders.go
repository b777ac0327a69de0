package controllers

import (
	"context"
	"net/http"

	"github.com/vrapolinario/AIforITOps/api/responses"
	"github.com/vrapolinario/AIforITOps/pkg/db/models"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

// OrderLister is the slice of the orders repository the admin view needs.
type OrderLister interface {
	List(ctx context.Context) ([]models.Order, error)
}

// ListOrders returns every order with line items for the admin view.
func ListOrders(repo OrderLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}
