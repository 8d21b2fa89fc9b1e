package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artisanmarket/cart-backend/api/controllers"
	cartcontrollers "github.com/artisanmarket/cart-backend/api/controllers/cart"
	"github.com/artisanmarket/cart-backend/api/middleware"
	"github.com/artisanmarket/cart-backend/internal/cart"
	"github.com/artisanmarket/cart-backend/pkg/config"
	"github.com/artisanmarket/cart-backend/pkg/db"
	"github.com/artisanmarket/cart-backend/pkg/logger"
	"github.com/artisanmarket/cart-backend/pkg/redis"
)

// NewRouter wires the HTTP surface. dbP and redisClient may be nil when the
// configured backend does not use them; the features that depend on Redis
// (idempotent replay, rate limiting) are then disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["db"] = dbP
	}

	var (
		idempotencyStore redis.IdempotencyStore
		limiter          *redis.Client
	)
	if redisClient != nil {
		deps["redis"] = redisClient
		idempotencyStore = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	rateLimit := middleware.RateLimitPolicy{
		Window:  cfg.HTTP.RateLimitWindow,
		PerIP:   cfg.HTTP.RateLimitPerIP,
		Surface: "cart",
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		if limiter != nil {
			r.Use(middleware.RateLimit(rateLimit, limiter, logg))
		}
		r.Use(middleware.CartSession(cfg.JWT, logg))

		r.Get("/", cartcontrollers.CartFetch(cartService, logg))
		r.Delete("/", cartcontrollers.CartClear(cartService, logg))
		r.Post("/open", cartcontrollers.CartOpen(cartService, logg))
		r.Post("/close", cartcontrollers.CartClose(cartService, logg))

		r.With(middleware.Idempotency(idempotencyStore, cfg.HTTP.IdempotencyTTL, logg)).
			Post("/items", cartcontrollers.CartAddItem(cartService, logg))
		r.Patch("/items/{productId}", cartcontrollers.CartUpdateQuantity(cartService, logg))
		r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartService, logg))
	})

	return r
}
