package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader — имя заголовка с подписью webhook-события.
const SignatureHeader = "Stripe-Signature"

// signatureTolerance — допустимый разбег часов между провайдером и сервисом.
const signatureTolerance = 5 * time.Minute

// ErrInvalidSignature возвращается при любой ошибке проверки подписи:
// отсутствие заголовка, неверный формат, расхождение HMAC, устаревшая метка.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifyEventSignature проверяет подпись тела webhook-события.
//
// Заголовок имеет вид "t=<unix>,v1=<hex-hmac>"; HMAC-SHA256 считается
// от строки "<unix>.<body>" на общем с провайдером секрете.
// Сравнение выполняется за константное время.
func VerifyEventSignature(body []byte, header, secret string, now time.Time) error {
	if header == "" {
		return ErrInvalidSignature
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	issuedAt := time.Unix(timestamp, 0)
	if now.Sub(issuedAt) > signatureTolerance || issuedAt.Sub(now) > signatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignPayload формирует значение заголовка подписи для тела события.
// Используется в тестах как эталонная реализация подписи провайдера.
func SignPayload(body []byte, secret string, issuedAt time.Time) string {
	ts := strconv.FormatInt(issuedAt.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent разбирает тело webhook-события.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, errors.New("event type is empty")
	}
	return &event, nil
}
