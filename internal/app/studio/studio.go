// Package studio собирает приложение: хранилище, кэш, очередь уведомлений,
// сервисы и HTTP-сервер с graceful shutdown.
package studio

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/MSAIGlobal/intuitv-studio/internal/cache"
	"github.com/MSAIGlobal/intuitv-studio/internal/config"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/jwt"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/rabbitmq"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/sl"
	"github.com/MSAIGlobal/intuitv-studio/internal/migrations"
	"github.com/MSAIGlobal/intuitv-studio/internal/paymentprovider"
	authservice "github.com/MSAIGlobal/intuitv-studio/internal/services/auth"
	billingservice "github.com/MSAIGlobal/intuitv-studio/internal/services/billing"
	"github.com/MSAIGlobal/intuitv-studio/internal/storage/repository"
)

// App — собранное приложение.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	publisher *rabbitmq.Publisher
}

// New создаёт приложение из конфигурации.
//
// Все зависимости конструируются здесь и передаются компонентам явно:
// глобального состояния в пакетах нет.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Очередь уведомлений опциональна: без неё события биллинга
	// просто не публикуются.
	var publisher *rabbitmq.Publisher
	if cfg.AMQPConnectionString != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPConnectionString)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("amqp connection string is empty, billing notifications disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.New(db, jwtMaker, cfg.EmergencyTokenTTL, logger)

	providerClient := paymentprovider.NewClient(cfg.PaymentProvider.SecretKey, cfg.PaymentProvider.APIURL)
	var billingPublisher billingservice.EventPublisher
	if publisher != nil {
		billingPublisher = publisher
	}
	billingService := billingservice.New(db, providerClient, billingPublisher, cacheRedis,
		cfg.PaymentProvider, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, billingService, db, cfg)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		publisher: publisher,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста
// или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown server gracefully", sl.Err(err))
		}
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close amqp publisher", sl.Err(err))
		}
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
