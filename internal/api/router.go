package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает HTTP-маршруты API. Все маршруты под /api требуют
// JWT сотрудника.
func NewRouter(handler *Handler, auth *Authenticator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handler.CreateOrder)
			r.Get("/", handler.ListOrders)
			r.Get("/{id}", handler.GetOrder)
		})

		r.Route("/books", func(r chi.Router) {
			r.Post("/", handler.CreateBook)
			r.Get("/", handler.ListBooks)
			r.Get("/search", handler.SearchBooks)
			r.Get("/{id}", handler.GetBook)
			r.Put("/{id}", handler.UpdateBook)
			r.Delete("/{id}", handler.DeleteBook)
		})
	})

	return r
}
