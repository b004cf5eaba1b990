package http //nolint:revive // directory-based package name, imported with alias

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 30 * time.Second

func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/", h.HandleHome)
	r.Get("/webhook", h.HandleWebhookReady)
	r.Post("/webhook", h.HandleWebhook)
	r.Post("/create-order", h.HandleCreateOrder)
	r.Post("/create-order/qr", h.HandleCreateOrderQR)
	r.Get("/payment-success", h.HandlePaymentSuccess)
	r.Get("/payment-cancelled", h.HandlePaymentCancelled)

	return r
}
