// Package login реализует HTTP-обработчик аутентификации пользователей.
//
// Неизвестный email и неверный пароль отдаются одним и тем же ответом,
// чтобы исключить перебор учётных записей. Отдельный аварийный путь
// владельца включается только явной конфигурацией и не трогает хранилище.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/MSAIGlobal/intuitv-studio/internal/config"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/response"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/sl"
	"github.com/MSAIGlobal/intuitv-studio/internal/models"
	"github.com/MSAIGlobal/intuitv-studio/internal/services/auth"
)

// Request — структура входных данных для авторизации.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response — успешный ответ авторизации.
type Response struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserPayload `json:"user"`
}

// UserPayload — нормализованный профиль пользователя c производным
// признаком необходимости оплаты.
type UserPayload struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Company            *string    `json:"company"`
	TrialEnd           *time.Time `json:"trial_end"`
	SubscriptionStatus string     `json:"subscription_status"`
	NeedsPayment       bool       `json:"needs_payment"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
	LoginEmergency(email string) (string, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log       *slog.Logger           // Логгер для записи операций и ошибок
	service   Service                // Сервис бизнес-логики аутентификации
	emergency config.EmergencyAccess // Настройки аварийного входа владельца
	validate  *validator.Validate    // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, emergency config.EmergencyAccess) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		emergency: emergency,
		validate:  validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if h.isEmergencyLogin(req.Email) {
		h.serveEmergencyLogin(w, r, log, req.Email)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			log.Error("login rejected", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid email or password"))
		case errors.Is(err, auth.ErrSubscriptionExpired):
			log.Error("login blocked by subscription", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("subscription expired"))
		default:
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("login failed"))
		}
		return
	}

	log.Info("login success", slog.String("user_uid", result.User.UID))
	render.JSON(w, r, Response{
		Success: true,
		Token:   result.Token,
		User: UserPayload{
			ID:                 result.User.UID,
			Name:               result.User.Name,
			Email:              result.User.Email,
			Company:            result.User.Company,
			TrialEnd:           result.User.TrialEnd,
			SubscriptionStatus: result.User.SubscriptionStatus,
			NeedsPayment:       result.NeedsPayment,
		},
	})
}

// isEmergencyLogin проверяет условия аварийного входа владельца.
// Путь полностью выключен по умолчанию.
func (h *Handler) isEmergencyLogin(email string) bool {
	return h.emergency.Enabled &&
		h.emergency.OwnerEmail != "" &&
		strings.EqualFold(email, h.emergency.OwnerEmail)
}

// serveEmergencyLogin выдаёт короткоживущий токен владельца,
// минуя хранилище. Каждое срабатывание пишется в лог как предупреждение.
func (h *Handler) serveEmergencyLogin(w http.ResponseWriter, r *http.Request, log *slog.Logger, email string) {
	token, err := h.service.LoginEmergency(email)
	if err != nil {
		log.Error("emergency login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("login failed"))
		return
	}

	log.Warn("emergency login used", slog.String("email", auth.NormalizeEmail(email)))
	render.JSON(w, r, Response{
		Success: true,
		Token:   token,
		User: UserPayload{
			Name:               h.emergency.OwnerName,
			Email:              auth.NormalizeEmail(email),
			SubscriptionStatus: models.StatusActive,
		},
	})
}
