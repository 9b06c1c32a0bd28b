package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	custommiddleware "github.com/mmeshcher/refund-tracker/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса возвратов.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	// Политика для разработки: разрешены любые источники, методы и заголовки.
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/health", h.Health)

	r.Route("/bills", func(r chi.Router) {
		r.Get("/", h.GetBills)
		r.Post("/", h.AddBill)
	})

	r.Route("/refunds", func(r chi.Router) {
		r.Get("/", h.ListRefunds)
		r.Post("/", h.CreateRefund)
		r.Post("/seed", h.SeedRefunds)
		r.Post("/{id}/advance", h.AdvanceRefund)
		r.Post("/{id}/escalate", h.EscalateRefund)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
