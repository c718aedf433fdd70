package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MSAIGlobal/intuitv-studio/internal/models"
)

// uniqueViolation — код ошибки PostgreSQL при нарушении уникальности.
const uniqueViolation = "23505"

const userColumns = `uid, email, name, company, password_hash, subscription_status, is_paid,
			      trial_start, trial_end, current_period_end, last_payment_at,
			      processor_customer_id, processor_subscription_id,
			      created_at, updated_at, last_login_at`

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
//
// Уникальность email обеспечивается ограничением в базе: при конфликте
// возвращается ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (uid, email, name, company, password_hash,
			      subscription_status, is_paid, trial_start, trial_end, current_period_end)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.Name, user.Company, user.PasswordHash,
		user.SubscriptionStatus, user.IsPaid, user.TrialStart, user.TrialEnd,
		user.CurrentPeriodEnd).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по email.
//
// Email в базе хранится в нижнем регистре, вызывающий код обязан
// нормализовать значение до запроса.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	return s.queryUser(ctx, op, query, email)
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	return s.queryUser(ctx, op, query, userUID)
}

// GetUserByCustomerID возвращает пользователя по идентификатору клиента
// у платёжного провайдера.
func (s *Storage) GetUserByCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByCustomerID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE processor_customer_id = $1`
	return s.queryUser(ctx, op, query, customerID)
}

// UpdateLastLogin фиксирует момент успешного входа пользователя.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string) error {
	const op = "storage.UpdateLastLogin"
	query := `UPDATE users
			  SET last_login_at = now(),
			      updated_at = now()
			  WHERE uid = $1`
	return s.execUpdate(ctx, op, query, userUID)
}

// SetBillingCustomer сохраняет идентификатор клиента у провайдера.
// Выполняется один раз перед созданием первой checkout-сессии.
func (s *Storage) SetBillingCustomer(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetBillingCustomer"
	query := `UPDATE users
			  SET processor_customer_id = $1,
			      updated_at = now()
			  WHERE uid = $2`
	return s.execUpdate(ctx, op, query, customerID, userUID)
}

// LinkSubscription привязывает подписку провайдера к пользователю
// по событию завершения checkout-сессии.
func (s *Storage) LinkSubscription(ctx context.Context, userUID, customerID, subscriptionID, status string,
	trialEnd, currentPeriodEnd *time.Time) error {
	const op = "storage.LinkSubscription"
	query := `UPDATE users
			  SET processor_customer_id = $1,
			      processor_subscription_id = $2,
			      subscription_status = $3,
			      trial_end = $4,
			      current_period_end = $5,
			      updated_at = now()
			  WHERE uid = $6`
	return s.execUpdate(ctx, op, query, customerID, subscriptionID, status, trialEnd, currentPeriodEnd, userUID)
}

// UpdateSubscription перезаписывает статус и границы периодов подписки.
func (s *Storage) UpdateSubscription(ctx context.Context, userUID, status string, isPaid bool,
	trialEnd, currentPeriodEnd *time.Time) error {
	const op = "storage.UpdateSubscription"
	query := `UPDATE users
			  SET subscription_status = $1,
			      is_paid = $2,
			      trial_end = $3,
			      current_period_end = $4,
			      updated_at = now()
			  WHERE uid = $5`
	return s.execUpdate(ctx, op, query, status, isPaid, trialEnd, currentPeriodEnd, userUID)
}

// CancelSubscription переводит подписку в статус canceled.
func (s *Storage) CancelSubscription(ctx context.Context, userUID string) error {
	const op = "storage.CancelSubscription"
	query := `UPDATE users
			  SET subscription_status = $1,
			      is_paid = FALSE,
			      updated_at = now()
			  WHERE uid = $2`
	return s.execUpdate(ctx, op, query, models.StatusCanceled, userUID)
}

// MarkPaymentSucceeded фиксирует успешный платёж: статус active,
// is_paid и момент платежа.
func (s *Storage) MarkPaymentSucceeded(ctx context.Context, userUID string) error {
	const op = "storage.MarkPaymentSucceeded"
	query := `UPDATE users
			  SET subscription_status = $1,
			      is_paid = TRUE,
			      last_payment_at = now(),
			      updated_at = now()
			  WHERE uid = $2`
	return s.execUpdate(ctx, op, query, models.StatusActive, userUID)
}

// MarkPaymentFailed переводит подписку в статус past_due.
// Признак is_paid при этом не меняется.
func (s *Storage) MarkPaymentFailed(ctx context.Context, userUID string) error {
	const op = "storage.MarkPaymentFailed"
	query := `UPDATE users
			  SET subscription_status = $1,
			      updated_at = now()
			  WHERE uid = $2`
	return s.execUpdate(ctx, op, query, models.StatusPastDue, userUID)
}

func (s *Storage) queryUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var company, customerID, subscriptionID sql.NullString
	var trialEnd, currentPeriodEnd, lastPaymentAt, lastLoginAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &company, &u.PasswordHash,
		&u.SubscriptionStatus, &u.IsPaid, &u.TrialStart, &trialEnd, &currentPeriodEnd,
		&lastPaymentAt, &customerID, &subscriptionID,
		&u.CreatedAt, &u.UpdatedAt, &lastLoginAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if company.Valid {
		u.Company = &company.String
	}
	if customerID.Valid {
		u.ProcessorCustomerID = &customerID.String
	}
	if subscriptionID.Valid {
		u.ProcessorSubscriptionID = &subscriptionID.String
	}
	if trialEnd.Valid {
		u.TrialEnd = &trialEnd.Time
	}
	if currentPeriodEnd.Valid {
		u.CurrentPeriodEnd = &currentPeriodEnd.Time
	}
	if lastPaymentAt.Valid {
		u.LastPaymentAt = &lastPaymentAt.Time
	}
	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}
	return u, nil
}

func (s *Storage) execUpdate(ctx context.Context, op, query string, args ...any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
