package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripovia/tripovia-backend/api/controllers"
	"github.com/tripovia/tripovia-backend/api/middleware"
	"github.com/tripovia/tripovia-backend/internal/governance"
	"github.com/tripovia/tripovia-backend/internal/payments"
	"github.com/tripovia/tripovia-backend/pkg/config"
	"github.com/tripovia/tripovia-backend/pkg/db"
	"github.com/tripovia/tripovia-backend/pkg/logger"
	"github.com/tripovia/tripovia-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	paymentsService payments.Service,
	governanceService governance.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	paymentPolicy := middleware.NewRateLimitPolicy(
		"payment",
		cfg.AuthRateLimit.PaymentWindow,
		cfg.AuthRateLimit.PaymentIPLimit,
		cfg.AuthRateLimit.PaymentLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/bookings/{holdId}/payments", func(r chi.Router) {
			r.Use(middleware.RateLimit(paymentPolicy, redisClient, logg))
			r.Post("/", controllers.InitiatePayment(paymentsService, logg))
			r.Post("/verify", controllers.VerifyPayment(paymentsService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/v1/partners/{partnerId}", func(r chi.Router) {
			r.Patch("/verification-status", controllers.AdminSetVerificationStatus(governanceService, logg))
			r.Patch("/account-status", controllers.AdminSetAccountStatus(governanceService, logg))
		})
	})

	return r
}
