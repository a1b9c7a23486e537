package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Deps struct {
	Carts          CartService
	Binder         UserBinder
	Checkouts      CheckoutService
	RequestTimeout time.Duration
}

// NewRouter builds the façade the presentation layer talks to.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.RequestTimeout))

	cartHandler := NewCartHandler(deps.Carts)
	checkoutHandler := NewCheckoutHandler(deps.Checkouts)
	sessionHandler := NewSessionHandler(deps.Binder, deps.Checkouts)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", sessionHandler.SetUser)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/refresh", cartHandler.Refresh)
			r.Put("/items/{itemID}", cartHandler.UpdateQuantity)
			r.Delete("/items/{itemID}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
			r.Delete("/error", cartHandler.DismissError)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetState)
			r.Post("/", checkoutHandler.Start)
			r.Post("/confirm", checkoutHandler.Confirm)
			r.Post("/reset", checkoutHandler.Reset)
		})
		r.Get("/payment-methods", checkoutHandler.PaymentMethods)
	})

	return otelhttp.NewHandler(r, "storefront")
}
