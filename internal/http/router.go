package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/consignd/internal/auth"
	"github.com/MrJamesThe3rd/consignd/internal/http/admin"
	"github.com/MrJamesThe3rd/consignd/internal/http/checkout"
	"github.com/MrJamesThe3rd/consignd/internal/http/listing"
	"github.com/MrJamesThe3rd/consignd/internal/http/webhook"
)

type Options struct {
	JWTSecret   string
	CORSOrigins []string
}

func New(
	opts Options,
	listingsV1 *listing.Handler,
	checkoutV1 *checkout.Handler,
	webhooksV1 *webhook.Handler,
	adminV1 *admin.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/listings", listingsV1.Routes)

		// Providers sign the raw body; no bearer token and no content-type filter.
		r.Route("/webhooks", webhooksV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.JWTSecret))
			r.Use(middleware.AllowContentType("application/json"))
			checkoutV1.Routes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Middleware(opts.JWTSecret))
			r.Use(auth.RequireAdmin)
			r.Use(middleware.AllowContentType("application/json"))
			adminV1.Routes(r)
		})
	})

	return router
}
