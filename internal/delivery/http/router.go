package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/stayfinder/listing_reviews/internal/config"
	"github.com/stayfinder/listing_reviews/internal/delivery/http/handler"
	"github.com/stayfinder/listing_reviews/internal/delivery/http/middleware"
	"github.com/stayfinder/listing_reviews/internal/delivery/http/response"
	"github.com/stayfinder/listing_reviews/internal/pkg/logger"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	reviewHandler *handler.ReviewHandler
	logger        *logger.Logger
	cfg           *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	reviewHandler *handler.ReviewHandler,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		reviewHandler: reviewHandler,
		logger:        log,
		cfg:           cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	auth := middleware.Auth(rt.cfg.Auth.JWTSecret)

	r.Route("/api/v1", func(r chi.Router) {
		// Listing views stay public and cheap: no auth, no existence check
		r.Get("/listings/{id}/reviews", rt.reviewHandler.ListByListing)

		r.Route("/reviews", func(r chi.Router) {
			r.Use(auth)
			r.Post("/", rt.reviewHandler.Create)
			r.Get("/me", rt.reviewHandler.ListMine)
			r.Delete("/{id}", rt.reviewHandler.Delete)
		})
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
