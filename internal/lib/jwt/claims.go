// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// CustomClaims расширяет стандартные claims JWT, добавляя идентификатор
// пользователя, email, роль и статус подписки.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается при любой ошибке проверки токена.
//
// Причина (просроченный, битая подпись, мусор) намеренно не раскрывается,
// чтобы вызывающий код не различал варианты отказа.
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserUID              string `json:"user_uid"`            // Идентификатор пользователя
	Email                string `json:"email"`               // Электронная почта
	Role                 string `json:"role"`                // Роль: user или owner
	SubscriptionStatus   string `json:"subscription_status"` // Статус подписки на момент выдачи
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// GenerateToken создает JWT токен с заданными claims и TTL по умолчанию,
// подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(userUID, email, role, subscriptionStatus string) (string, error) {
	return j.GenerateTokenWithTTL(userUID, email, role, subscriptionStatus, j.tokenTTL)
}

// GenerateTokenWithTTL создает JWT токен с явным сроком жизни.
func (j *MakerImpl) GenerateTokenWithTTL(userUID, email, role, subscriptionStatus string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		UserUID:            userUID,
		Email:              email,
		Role:               role,
		SubscriptionStatus: subscriptionStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает CustomClaims с данными, если токен корректен.
// Любая ошибка проверки сводится к ErrInvalidToken.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
