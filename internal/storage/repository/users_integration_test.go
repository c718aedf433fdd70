package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MSAIGlobal/intuitv-studio/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	trialStart := time.Now().UTC()
	trialEnd := trialStart.Add(14 * 24 * time.Hour)
	company := "Acme"
	user := models.User{
		UID:                uuid.New().String(),
		Email:              "test@example.com",
		Name:               "Test User",
		Company:            &company,
		PasswordHash:       "hashedpassword",
		SubscriptionStatus: models.StatusTrial,
		TrialStart:         trialStart,
		TrialEnd:           &trialEnd,
	}

	uid, err := storage.CreateUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, user.UID, uid)

	got, err := storage.GetUserByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.UID, got.UID)
	assert.Equal(t, "Test User", got.Name)
	require.NotNil(t, got.Company)
	assert.Equal(t, "Acme", *got.Company)
	assert.Equal(t, models.StatusTrial, got.SubscriptionStatus)
	assert.False(t, got.IsPaid)
	require.NotNil(t, got.TrialEnd)
	assert.WithinDuration(t, trialEnd, *got.TrialEnd, time.Second)
	assert.Nil(t, got.ProcessorCustomerID)
	assert.Nil(t, got.LastLoginAt)
}

func TestStorage_CreateUser_DuplicateEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "test@example.com", "First User", "hashedpassword")

	_, err := storage.CreateUser(context.Background(), models.User{
		UID:                uuid.New().String(),
		Email:              "test@example.com",
		Name:               "Second User",
		PasswordHash:       "otherhash",
		SubscriptionStatus: models.StatusTrial,
		TrialStart:         time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestStorage_GetUser_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = storage.GetUserByUID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = storage.GetUserByCustomerID(context.Background(), "cus_ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_UpdateLastLogin(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "test@example.com", "Test User", "hashedpassword")

	require.NoError(t, storage.UpdateLastLogin(context.Background(), uid))

	got, err := storage.GetUserByUID(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, time.Now().UTC(), *got.LastLoginAt, time.Minute)

	err = storage.UpdateLastLogin(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_SetBillingCustomer_And_LinkSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "test@example.com", "Test User", "hashedpassword")

	require.NoError(t, storage.SetBillingCustomer(context.Background(), uid, "cus_1"))

	got, err := storage.GetUserByCustomerID(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)

	trialEnd := time.Now().UTC().Add(14 * 24 * time.Hour)
	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour)
	require.NoError(t, storage.LinkSubscription(context.Background(), uid, "cus_1", "sub_1",
		models.StatusTrial, &trialEnd, &periodEnd))

	got, err = storage.GetUserByUID(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, got.ProcessorSubscriptionID)
	assert.Equal(t, "sub_1", *got.ProcessorSubscriptionID)
	assert.Equal(t, models.StatusTrial, got.SubscriptionStatus)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.WithinDuration(t, periodEnd, *got.CurrentPeriodEnd, time.Second)
}

func TestStorage_SubscriptionLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUserWithBilling(t, "test@example.com", "Test User",
		"cus_1", "sub_1", models.StatusTrial)

	// Оплата прошла: active и is_paid
	require.NoError(t, storage.MarkPaymentSucceeded(context.Background(), uid))
	got, err := storage.GetUserByUID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.SubscriptionStatus)
	assert.True(t, got.IsPaid)
	require.NotNil(t, got.LastPaymentAt)

	// Платёж не прошёл: past_due, is_paid не трогается
	require.NoError(t, storage.MarkPaymentFailed(context.Background(), uid))
	got, err = storage.GetUserByUID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPastDue, got.SubscriptionStatus)
	assert.True(t, got.IsPaid)

	// Подписка отменена: canceled и сброс is_paid
	require.NoError(t, storage.CancelSubscription(context.Background(), uid))
	got, err = storage.GetUserByUID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, got.SubscriptionStatus)
	assert.False(t, got.IsPaid)

	// Email и имя сверкой не затронуты
	assert.Equal(t, "test@example.com", got.Email)
	assert.Equal(t, "Test User", got.Name)
}

func TestStorage_UpdateSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUserWithBilling(t, "test@example.com", "Test User",
		"cus_1", "sub_1", models.StatusTrial)

	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour)
	require.NoError(t, storage.UpdateSubscription(context.Background(), uid,
		models.StatusActive, true, nil, &periodEnd))

	got, err := storage.GetUserByUID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.SubscriptionStatus)
	assert.True(t, got.IsPaid)
	assert.Nil(t, got.TrialEnd)
	require.NotNil(t, got.CurrentPeriodEnd)

	err = storage.UpdateSubscription(context.Background(), uuid.New().String(),
		models.StatusActive, true, nil, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_Ready(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, storage.Ready(context.Background()))

	_, err := storage.DB.Exec(`DROP TABLE users CASCADE`)
	require.NoError(t, err)
	assert.Error(t, storage.Ready(context.Background()))
}

func TestStorage_ContextCancellation(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.GetUserByEmail(ctx, "test@example.com")
	assert.ErrorIs(t, err, context.Canceled)
}
