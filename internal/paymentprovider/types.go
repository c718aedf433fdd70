package paymentprovider

import (
	"encoding/json"
	"time"
)

// Customer представляет клиента у платёжного провайдера.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CheckoutSession представляет созданную сессию оплаты подписки.
type CheckoutSession struct {
	ID           string `json:"id"`
	URL          string `json:"url"` // Адрес для редиректа клиента
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

// Subscription представляет объект подписки провайдера.
// Временные границы приходят unix-секундами.
type Subscription struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"` // trialing, active, past_due, canceled и др.
	TrialEnd         *int64 `json:"trial_end"`
	CurrentPeriodEnd *int64 `json:"current_period_end"`
}

// TrialEndTime возвращает окончание пробного периода как time.Time.
func (s *Subscription) TrialEndTime() *time.Time {
	return unixPtr(s.TrialEnd)
}

// CurrentPeriodEndTime возвращает окончание оплаченного периода как time.Time.
func (s *Subscription) CurrentPeriodEndTime() *time.Time {
	return unixPtr(s.CurrentPeriodEnd)
}

func unixPtr(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	t := time.Unix(*sec, 0).UTC()
	return &t
}

// CreateCheckoutSessionParams — параметры создания checkout-сессии подписки.
type CreateCheckoutSessionParams struct {
	CustomerID      string
	PriceID         string
	TrialPeriodDays int
	SuccessURL      string
	CancelURL       string
	UserUID         string // Прокидывается в metadata для webhook-обработчика
	IdempotencyKey  string
}

// Event представляет webhook-событие провайдера.
// Содержимое Data.Object зависит от типа события и разбирается адресно.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSessionObject — полезная нагрузка события checkout.session.completed.
type CheckoutSessionObject struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// SubscriptionObject — полезная нагрузка событий customer.subscription.*.
type SubscriptionObject struct {
	Subscription
	Metadata map[string]string `json:"metadata"`
}

// InvoiceObject — полезная нагрузка событий invoice.payment_*.
type InvoiceObject struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}
