package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/MSAIGlobal/intuitv-studio/internal/lib/rabbitmq"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/sl"
	"github.com/MSAIGlobal/intuitv-studio/internal/models"
	"github.com/MSAIGlobal/intuitv-studio/internal/paymentprovider"
)

// EventKind — тип webhook-события провайдера.
//
// Набор закрытый: новые типы событий добавляются в словарь явно,
// всё неизвестное попадает в ветку no-op.
type EventKind string

// Обрабатываемые типы событий.
const (
	EventCheckoutCompleted       EventKind = "checkout.session.completed"
	EventSubscriptionUpdated     EventKind = "customer.subscription.updated"
	EventSubscriptionDeleted     EventKind = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded EventKind = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    EventKind = "invoice.payment_failed"
)

// dedupTTL — срок хранения отметки об обработанном событии.
const dedupTTL = 24 * time.Hour

// notification — полезная нагрузка уведомления о событии биллинга.
type notification struct {
	UserUID string `json:"user_uid"`
	Email   string `json:"email"`
	Event   string `json:"event"`
}

// ProcessEvent сверяет состояние подписки пользователя с пришедшим
// webhook-событием. Подпись события к этому моменту уже проверена.
//
// Повторное событие с тем же идентификатором пропускается. Ошибка
// возвращается вызывающему только для логирования: провайдеру
// обработчик всё равно отвечает успехом.
func (s *Service) ProcessEvent(ctx context.Context, event *paymentprovider.Event) error {
	const op = "billing.ProcessEvent"

	if s.seen(event.ID) {
		s.log.Info("duplicate webhook event skipped", slog.String("event_id", event.ID))
		return nil
	}

	var err error
	switch EventKind(event.Type) {
	case EventCheckoutCompleted:
		err = s.applyCheckoutCompleted(ctx, event.Data.Object)
	case EventSubscriptionUpdated:
		err = s.applySubscriptionUpdated(ctx, event.Data.Object)
	case EventSubscriptionDeleted:
		err = s.applySubscriptionDeleted(ctx, event.Data.Object)
	case EventInvoicePaymentSucceeded:
		err = s.applyPaymentSucceeded(ctx, event.Data.Object)
	case EventInvoicePaymentFailed:
		err = s.applyPaymentFailed(ctx, event.Data.Object)
	default:
		s.log.Info("unhandled webhook event kind", slog.String("kind", event.Type))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.markSeen(event.ID)
	return nil
}

// applyCheckoutCompleted привязывает клиента и подписку провайдера
// к пользователю. Статус и границы периодов берутся из объекта подписки.
func (s *Service) applyCheckoutCompleted(ctx context.Context, object json.RawMessage) error {
	var session paymentprovider.CheckoutSessionObject
	if err := json.Unmarshal(object, &session); err != nil {
		return err
	}

	user, err := s.resolveUser(ctx, session.Customer, session.Metadata["user_uid"])
	if err != nil {
		return err
	}

	subscription, err := s.provider.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return err
	}

	return s.repo.LinkSubscription(ctx, user.UID, session.Customer, session.Subscription,
		models.NormalizeStatus(subscription.Status),
		subscription.TrialEndTime(), subscription.CurrentPeriodEndTime())
}

// applySubscriptionUpdated перезаписывает статус подписки и пересчитывает
// is_paid: подписка оплачена, когда статус active и пробный период
// уже не действует.
func (s *Service) applySubscriptionUpdated(ctx context.Context, object json.RawMessage) error {
	var subscription paymentprovider.SubscriptionObject
	if err := json.Unmarshal(object, &subscription); err != nil {
		return err
	}

	user, err := s.resolveUser(ctx, subscription.Customer, subscription.Metadata["user_uid"])
	if err != nil {
		return err
	}

	status := models.NormalizeStatus(subscription.Status)
	trialEnd := subscription.TrialEndTime()
	trialActive := trialEnd != nil && trialEnd.After(time.Now().UTC())
	isPaid := status == models.StatusActive && !trialActive

	return s.repo.UpdateSubscription(ctx, user.UID, status, isPaid,
		trialEnd, subscription.CurrentPeriodEndTime())
}

func (s *Service) applySubscriptionDeleted(ctx context.Context, object json.RawMessage) error {
	var subscription paymentprovider.SubscriptionObject
	if err := json.Unmarshal(object, &subscription); err != nil {
		return err
	}

	user, err := s.resolveUser(ctx, subscription.Customer, subscription.Metadata["user_uid"])
	if err != nil {
		return err
	}

	if err := s.repo.CancelSubscription(ctx, user.UID); err != nil {
		return err
	}
	s.notify(rabbitmq.RoutingKeySubscriptionCanceled, user, string(EventSubscriptionDeleted))
	return nil
}

func (s *Service) applyPaymentSucceeded(ctx context.Context, object json.RawMessage) error {
	var invoice paymentprovider.InvoiceObject
	if err := json.Unmarshal(object, &invoice); err != nil {
		return err
	}

	user, err := s.resolveUser(ctx, invoice.Customer, "")
	if err != nil {
		return err
	}
	return s.repo.MarkPaymentSucceeded(ctx, user.UID)
}

func (s *Service) applyPaymentFailed(ctx context.Context, object json.RawMessage) error {
	var invoice paymentprovider.InvoiceObject
	if err := json.Unmarshal(object, &invoice); err != nil {
		return err
	}

	user, err := s.resolveUser(ctx, invoice.Customer, "")
	if err != nil {
		return err
	}

	if err := s.repo.MarkPaymentFailed(ctx, user.UID); err != nil {
		return err
	}
	s.notify(rabbitmq.RoutingKeyPaymentFailed, user, string(EventInvoicePaymentFailed))
	return nil
}

// resolveUser находит пользователя по идентификатору клиента провайдера.
// Для первого события сценария, когда идентификатор ещё не сохранён,
// используется запасной поиск по UID из metadata.
func (s *Service) resolveUser(ctx context.Context, customerID, metadataUID string) (*models.User, error) {
	if customerID != "" {
		user, err := s.repo.GetUserByCustomerID(ctx, customerID)
		if err == nil {
			return user, nil
		}
	}
	if metadataUID != "" {
		return s.repo.GetUserByUID(ctx, metadataUID)
	}
	return nil, fmt.Errorf("no user for customer %q", customerID)
}

// notify публикует уведомление о событии биллинга.
// Ошибка публикации не прерывает сверку и только логируется.
func (s *Service) notify(routingKey string, user *models.User, event string) {
	if s.publisher == nil {
		return
	}
	msg := notification{UserUID: user.UID, Email: user.Email, Event: event}
	if err := s.publisher.Publish(routingKey, msg); err != nil {
		s.log.Error("failed to publish billing notification", sl.Err(err))
	}
}

func (s *Service) seen(eventID string) bool {
	if s.cache == nil || eventID == "" {
		return false
	}
	var processed bool
	found, err := s.cache.Get(dedupKey(eventID), &processed)
	if err != nil {
		s.log.Error("failed to check webhook dedup key", sl.Err(err))
		return false
	}
	return found
}

func (s *Service) markSeen(eventID string) {
	if s.cache == nil || eventID == "" {
		return
	}
	if err := s.cache.Set(dedupKey(eventID), true, dedupTTL); err != nil {
		s.log.Error("failed to store webhook dedup key", sl.Err(err))
	}
}

func dedupKey(eventID string) string {
	return "webhook:event:" + eventID
}
