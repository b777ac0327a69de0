package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vrapolinario/AIforITOps/api/controllers"
	"github.com/vrapolinario/AIforITOps/api/middleware"
	cartsvc "github.com/vrapolinario/AIforITOps/internal/cart"
	"github.com/vrapolinario/AIforITOps/internal/catalog"
	"github.com/vrapolinario/AIforITOps/internal/chat"
	checkoutsvc "github.com/vrapolinario/AIforITOps/internal/checkout"
	"github.com/vrapolinario/AIforITOps/pkg/config"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Readiness    map[string]controllers.Pinger
	Catalog      catalog.Service
	Orders       controllers.OrderLister
	Cart         cartsvc.Service
	Checkout     checkoutsvc.Service
	Chat         chat.Service
	MetricsExtra http.Handler
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.Readiness))
	})

	if p.MetricsExtra != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsExtra)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Post("/api/chatbot", controllers.Chatbot(p.Chat, p.Logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(p.Catalog, p.Logger))
				r.Post("/", controllers.CreateProduct(p.Catalog, p.Logger))
				r.Get("/{productID}", controllers.GetProduct(p.Catalog, p.Logger))
				r.Put("/{productID}", controllers.UpdateProduct(p.Catalog, p.Logger))
				r.Delete("/{productID}", controllers.DeleteProduct(p.Catalog, p.Logger))
			})
			r.Get("/orders", controllers.ListOrders(p.Orders, p.Logger))
		})

		r.Route("/storefront", func(r chi.Router) {
			r.Use(middleware.Session(p.Logger))
			r.Get("/products", controllers.ListProducts(p.Catalog, p.Logger))
			r.Get("/products/{productID}", controllers.GetProduct(p.Catalog, p.Logger))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(p.Cart, p.Logger))
				r.Post("/items", controllers.AddToCart(p.Cart, p.Catalog, p.Logger))
				r.Post("/items/increase", controllers.IncreaseCartItem(p.Cart, p.Logger))
				r.Post("/items/remove", controllers.RemoveCartItem(p.Cart, p.Logger))
			})
			r.Post("/checkout", controllers.Checkout(p.Checkout, p.Logger))
		})
	})

	return r
}
