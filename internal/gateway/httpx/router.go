// Package httpx exposes the fulfillment core over HTTP.
package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/shoe-fulfillment/internal/gateway/httpx/middlewares"
	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/session"
)

func NewRouter(handler *Handler, sessions session.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate(sessions))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", handler.ListCart)
			r.Post("/", handler.AddToCart)
			r.Delete("/{id}", handler.RemoveFromCart)
			r.Put("/{id}/quantity", handler.UpdateCartQuantity)
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", handler.CreateOrder)
			r.Get("/", handler.GetAllOrders)
			r.Get("/user/{userID}", handler.GetUserOrders)
			r.Put("/{id}/status", handler.UpdateOrderStatus)
		})

		r.Get("/api/checkouts/{id}", handler.GetCheckoutStatus)
		r.Get("/api/admin/sessions", handler.GetDashboard)
		r.Post("/api/auth/logout", handler.Logout)
	})

	return r
}
