// Package checkout реализует HTTP-обработчик создания checkout-сессии
// оплаты подписки для аутентифицированного пользователя.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MSAIGlobal/intuitv-studio/internal/http/middlewarectx"
	"github.com/MSAIGlobal/intuitv-studio/internal/http/response"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/sl"
	"github.com/MSAIGlobal/intuitv-studio/internal/services/billing"
	"github.com/MSAIGlobal/intuitv-studio/internal/storage/repository"
)

// Response — успешный ответ с адресом редиректа на оплату.
type Response struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// Service описывает интерфейс бизнес-логики биллинга.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userUID string) (*billing.CheckoutResult, error)
}

// Handler обрабатывает запросы на создание checkout-сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.CreateCheckoutSession(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("session_id", result.SessionID))
	render.JSON(w, r, Response{
		URL:       result.URL,
		SessionID: result.SessionID,
	})
}
