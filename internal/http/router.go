package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kedarnag/invoiceflow/internal/http/export"
	"github.com/kedarnag/invoiceflow/internal/http/invoice"
	"github.com/kedarnag/invoiceflow/internal/http/profile"
)

func New(
	invoicesV1 *invoice.Handler,
	profileV1 *profile.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/invoices", invoicesV1.Routes)

		r.Route("/profile", profileV1.Routes)

		r.Route("/export", exportV1.Routes)
	})

	return router
}
