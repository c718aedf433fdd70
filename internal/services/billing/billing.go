// Package billing содержит бизнес-логику работы с внешним платёжным
// провайдером: создание checkout-сессий и сверку состояния подписки
// по webhook-событиям.
package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MSAIGlobal/intuitv-studio/internal/config"
	"github.com/MSAIGlobal/intuitv-studio/internal/models"
	"github.com/MSAIGlobal/intuitv-studio/internal/paymentprovider"
)

// UserRepository описывает контракт хранилища для нужд биллинга.
//
// Все изменяющие методы — точечные обновления полей подписки,
// обновляющие updated_at.
type UserRepository interface {
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	GetUserByCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetBillingCustomer(ctx context.Context, userUID, customerID string) error
	LinkSubscription(ctx context.Context, userUID, customerID, subscriptionID, status string,
		trialEnd, currentPeriodEnd *time.Time) error
	UpdateSubscription(ctx context.Context, userUID, status string, isPaid bool,
		trialEnd, currentPeriodEnd *time.Time) error
	CancelSubscription(ctx context.Context, userUID string) error
	MarkPaymentSucceeded(ctx context.Context, userUID string) error
	MarkPaymentFailed(ctx context.Context, userUID string) error
}

// ProviderClient описывает используемую часть API платёжного провайдера.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, email, name string) (*paymentprovider.Customer, error)
	CreateCheckoutSession(ctx context.Context, params paymentprovider.CreateCheckoutSessionParams) (*paymentprovider.CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
}

// EventPublisher публикует уведомления о событиях биллинга в очередь.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Cache используется для дедупликации уже обработанных webhook-событий.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Service — сервис биллинга.
//
// publisher и cache могут быть nil: публикация уведомлений и
// дедупликация событий тогда отключены.
type Service struct {
	repo      UserRepository
	provider  ProviderClient
	publisher EventPublisher
	cache     Cache
	cfg       config.PaymentProvider
	log       *slog.Logger
}

// New создает новый Service.
func New(repo UserRepository, provider ProviderClient, publisher EventPublisher,
	cache Cache, cfg config.PaymentProvider, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		cache:     cache,
		cfg:       cfg,
		log:       log,
	}
}

// CheckoutResult — результат создания checkout-сессии.
type CheckoutResult struct {
	URL       string
	SessionID string
}

// CreateCheckoutSession открывает сессию оплаты подписки для пользователя.
//
// При первом обращении у провайдера создаётся клиент, и его идентификатор
// сохраняется в хранилище до создания сессии. Запрос к провайдеру
// выполняется один раз, без ретраев.
func (s *Service) CreateCheckoutSession(ctx context.Context, userUID string) (*CheckoutResult, error) {
	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}

	var customerID string
	if user.ProcessorCustomerID != nil {
		customerID = *user.ProcessorCustomerID
	} else {
		customer, err := s.provider.CreateCustomer(ctx, user.Email, user.Name)
		if err != nil {
			return nil, err
		}
		if err = s.repo.SetBillingCustomer(ctx, user.UID, customer.ID); err != nil {
			return nil, err
		}
		customerID = customer.ID
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CreateCheckoutSessionParams{
		CustomerID:      customerID,
		PriceID:         s.cfg.PriceID,
		TrialPeriodDays: s.cfg.TrialPeriodDays,
		SuccessURL:      s.cfg.SuccessURL,
		CancelURL:       s.cfg.CancelURL,
		UserUID:         user.UID,
		IdempotencyKey:  uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		URL:       session.URL,
		SessionID: session.ID,
	}, nil
}
