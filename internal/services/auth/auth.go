// Package auth содержит логику бизнес-уровня для регистрации,
// аутентификации пользователей и проверки JWT.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MSAIGlobal/intuitv-studio/internal/lib/jwt"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/password"
	"github.com/MSAIGlobal/intuitv-studio/internal/models"
	"github.com/MSAIGlobal/intuitv-studio/internal/storage/repository"
)

// trialPeriod — длительность пробного периода новой учётной записи.
const trialPeriod = 14 * 24 * time.Hour

// Роли, зашиваемые в токен.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// Ошибки бизнес-уровня аутентификации.
var (
	// ErrInvalidCredentials возвращается и для неизвестного email,
	// и для неверного пароля: вызывающий код обязан отдавать
	// одинаковый ответ, не раскрывая существование учётной записи.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSubscriptionExpired возвращается при входе с отменённой
	// или истёкшей подпиской.
	ErrSubscriptionExpired = errors.New("subscription expired")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateLastLogin фиксирует момент успешного входа.
	UpdateLastLogin(ctx context.Context, userUID string) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users        UserRepository
	jwtMaker     jwt.Maker
	emergencyTTL time.Duration
	log          *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, emergencyTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		users:        users,
		jwtMaker:     jwtMaker,
		emergencyTTL: emergencyTTL,
		log:          log,
	}
}

// RegisterParams — входные данные регистрации, уже прошедшие валидацию формы.
type RegisterParams struct {
	Name     string
	Email    string
	Company  string
	Password string
}

// AuthResult — результат регистрации или входа.
type AuthResult struct {
	Token        string
	User         *models.User
	NeedsPayment bool
}

// Register создает нового пользователя с пробным периодом и выдаёт токен.
//
// Email нормализуется к нижнему регистру; уникальность обеспечивается
// хранилищем (repository.ErrUserExists при дубликате).
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	hashed, err := password.GetHash(params.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trialEnd := now.Add(trialPeriod)
	var company *string
	if params.Company != "" {
		company = &params.Company
	}
	user := models.User{
		UID:                uuid.NewString(),
		Email:              NormalizeEmail(params.Email),
		Name:               params.Name,
		Company:            company,
		PasswordHash:       hashed,
		SubscriptionStatus: models.StatusTrial,
		IsPaid:             false,
		TrialStart:         now,
		TrialEnd:           &trialEnd,
	}

	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.UID = uid
	user.CreatedAt = now
	user.UpdatedAt = now

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, RoleUser, user.SubscriptionStatus)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: &user}, nil
}

// Login проверяет учётные данные и выдаёт токен.
//
// Неизвестный email и неверный пароль сводятся к одной ошибке
// ErrInvalidCredentials; отказ хранилища под неё не маскируется
// и отдаётся вызывающему как есть. Подписка в статусе canceled
// или expired блокирует вход отдельной ошибкой — к этому моменту
// личность уже подтверждена.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsSubscriptionBlocked() {
		return nil, ErrSubscriptionExpired
	}

	if err := s.users.UpdateLastLogin(ctx, user.UID); err != nil {
		return nil, err
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, RoleUser, user.SubscriptionStatus)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:        token,
		User:         user,
		NeedsPayment: user.NeedsPayment(time.Now().UTC()),
	}, nil
}

// LoginEmergency выдаёт короткоживущий токен владельца, не обращаясь
// к хранилищу. Аварийный путь, включается только явной конфигурацией;
// каждое использование фиксируется в логе.
func (s *Service) LoginEmergency(email string) (string, error) {
	s.log.Warn("emergency owner access granted",
		slog.String("email", NormalizeEmail(email)),
		slog.Duration("ttl", s.emergencyTTL),
	)
	return s.jwtMaker.GenerateTokenWithTTL(
		"", NormalizeEmail(email), RoleOwner, models.StatusActive, s.emergencyTTL)
}

// ValidateToken проверяет JWT и возвращает его claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

// NormalizeEmail приводит email к каноническому виду для поиска и хранения.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
