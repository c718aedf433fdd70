// Package models содержит доменную модель пользователя сервиса,
// включающую данные учётной записи, хэш пароля, статус подписки
// и привязку к внешнему платёжному провайдеру.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Возможные значения статуса подписки пользователя.
//
// Словарь единый: статус провайдера "trialing" при приёме
// нормализуется в StatusTrial и в таком виде хранится.
const (
	StatusTrial    = "trial"    // Пробный период
	StatusActive   = "active"   // Оплаченная подписка
	StatusPastDue  = "past_due" // Просроченный платёж
	StatusCanceled = "canceled" // Подписка отменена
	StatusExpired  = "expired"  // Подписка истекла
	StatusPending  = "pending"  // Ожидание подтверждения оплаты
)

// User представляет зарегистрированного пользователя сервиса.
type User struct {
	UID                     string     // Уникальный идентификатор пользователя
	Email                   string     // Электронная почта, хранится в нижнем регистре
	Name                    string     // Отображаемое имя
	Company                 *string    // Название компании (опционально)
	PasswordHash            string     // Хэш пароля пользователя
	SubscriptionStatus      string     // Текущий статус подписки
	IsPaid                  bool       // Признак оплаченной подписки
	TrialStart              time.Time  // Начало пробного периода
	TrialEnd                *time.Time // Окончание пробного периода
	CurrentPeriodEnd        *time.Time // Окончание оплаченного периода
	LastPaymentAt           *time.Time // Дата последнего успешного платежа
	ProcessorCustomerID     *string    // Идентификатор клиента у провайдера
	ProcessorSubscriptionID *string    // Идентификатор подписки у провайдера
	CreatedAt               time.Time  // Дата создания записи
	UpdatedAt               time.Time  // Дата последнего изменения записи
	LastLoginAt             *time.Time // Дата последнего входа
}

// NormalizeStatus приводит статус провайдера к словарю сервиса.
func NormalizeStatus(providerStatus string) string {
	switch providerStatus {
	case "trialing":
		return StatusTrial
	case StatusTrial, StatusActive, StatusPastDue, StatusCanceled, StatusExpired, StatusPending:
		return providerStatus
	default:
		return StatusPending
	}
}

// NeedsPayment возвращает true, когда пробный период истёк,
// а статус всё ещё trial. Производный признак, в базе не хранится.
func (u *User) NeedsPayment(now time.Time) bool {
	return u.SubscriptionStatus == StatusTrial && u.TrialEnd != nil && u.TrialEnd.Before(now)
}

// IsSubscriptionBlocked возвращает true для статусов,
// запрещающих вход в сервис.
func (u *User) IsSubscriptionBlocked() bool {
	return u.SubscriptionStatus == StatusCanceled || u.SubscriptionStatus == StatusExpired
}
