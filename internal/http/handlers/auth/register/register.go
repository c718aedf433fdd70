// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Handler принимает JSON-запрос с данными новой учётной записи, валидирует их,
// вызывает бизнес-логику регистрации и возвращает выданный токен вместе
// с нормализованным профилем. Хэш пароля наружу не отдаётся никогда.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/MSAIGlobal/intuitv-studio/internal/http/response"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/sl"
	"github.com/MSAIGlobal/intuitv-studio/internal/services/auth"
	"github.com/MSAIGlobal/intuitv-studio/internal/storage/repository"
)

// Request — входные данные для регистрации.
type Request struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Company  string `json:"company"`
	Password string `json:"password" validate:"required,min=8"`
}

// Response — успешный ответ регистрации.
type Response struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserPayload `json:"user"`
}

// UserPayload — нормализованный профиль нового пользователя.
type UserPayload struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Company            *string    `json:"company"`
	TrialEnd           *time.Time `json:"trial_end"`
	SubscriptionStatus string     `json:"subscription_status"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, params auth.RegisterParams) (*auth.AuthResult, error)
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики регистрации
	validate *validator.Validate // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	result, err := h.service.Register(r.Context(), auth.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			log.Error("duplicate registration", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("user already exists with this email"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	log.Info("user registered", slog.String("user_uid", result.User.UID))
	w.WriteHeader(http.StatusCreated)
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
		},
	})
}
