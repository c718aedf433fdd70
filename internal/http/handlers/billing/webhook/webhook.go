// Package webhook реализует приём webhook-событий платёжного провайдера.
//
// Подпись события проверяется до разбора полезной нагрузки; ошибка подписи —
// единственная причина неуспешного ответа. Ошибки сверки после проверенной
// подписи логируются, но провайдеру всё равно отдаётся подтверждение,
// чтобы не провоцировать шторм повторных доставок.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MSAIGlobal/intuitv-studio/internal/http/response"
	"github.com/MSAIGlobal/intuitv-studio/internal/lib/sl"
	"github.com/MSAIGlobal/intuitv-studio/internal/paymentprovider"
)

// Response — подтверждение приёма события.
type Response struct {
	Received bool `json:"received"`
}

// Service описывает интерфейс сверки состояния подписки по событию.
type Service interface {
	ProcessEvent(ctx context.Context, event *paymentprovider.Event) error
}

// Handler обрабатывает входящие webhook-события.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string // Секрет для проверки подписи
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook payload"))
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	signature := r.Header.Get(paymentprovider.SignatureHeader)
	if err := paymentprovider.VerifyEventSignature(body, signature, h.webhookSecret, time.Now()); err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook signature"))
		return
	}

	event, err := paymentprovider.ParseEvent(body)
	if err != nil {
		log.Error("failed to parse webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook payload"))
		return
	}

	// Ошибка сверки не отдаётся провайдеру: событие уже принято.
	if err := h.service.ProcessEvent(r.Context(), event); err != nil {
		log.Error("failed to process webhook event",
			slog.String("event_id", event.ID),
			slog.String("event_type", event.Type),
			sl.Err(err))
	} else {
		log.Info("webhook event processed",
			slog.String("event_id", event.ID),
			slog.String("event_type", event.Type))
	}

	render.JSON(w, r, Response{Received: true})
}
