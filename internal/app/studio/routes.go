// Package studio предоставляет маршруты для основного приложения.
package studio

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/MSAIGlobal/intuitv-studio/internal/config"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/handlers/auth/login"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/handlers/auth/register"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/handlers/billing/checkout"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/handlers/billing/webhook"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/handlers/health"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/middlewarectx"
	authservice "github.com/MSAIGlobal/intuitv-studio/internal/services/auth"
	billingservice "github.com/MSAIGlobal/intuitv-studio/internal/services/billing"
	"github.com/MSAIGlobal/intuitv-studio/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.Service,
	billingService *billingservice.Service, db *repository.Storage, cfg *config.Config) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService, cfg.EmergencyAccess).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/billing/checkout-session", checkout.New(logger, billingService).ServeHTTP)
		})

		// Webhook endpoint: вместо аутентификации — подпись провайдера
		r.Post("/billing/webhook", webhook.New(logger, billingService, cfg.PaymentProvider.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
