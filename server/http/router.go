package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"commission-service/internal/commission/handler"
	"commission-service/internal/config"
	"commission-service/internal/middleware"
	"commission-service/server/http/handlers"
)

func NewRouter(cfg config.ServerConfig, h *handler.Handler, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> ratelimit -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/marketplaces", h.Marketplaces)
		r.Post("/reload", h.Reload)

		r.Get("/search", h.Search)
		r.Get("/lookup", h.Lookup)

		r.Get("/categories", h.Categories)
		r.Get("/sub-categories", h.SubCategories)
		r.Get("/product-groups", h.ProductGroups)
		r.Get("/commission-rate", h.CommissionRate)
		r.Get("/product-group-commissions", h.ProductGroupCommissions)
		r.Get("/stats", h.Stats)
		r.Get("/suggestions", h.Suggestions)

		r.Post("/calculate", h.Calculate)
	})

	return r
}
