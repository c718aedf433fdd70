package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MSAIGlobal/intuitv-studio/internal/models"
	"github.com/MSAIGlobal/intuitv-studio/internal/services/auth"
	"github.com/MSAIGlobal/intuitv-studio/internal/storage/repository"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, params auth.RegisterParams) (*auth.AuthResult, error) {
	args := m.Called(ctx, params)
	result, _ := args.Get(0).(*auth.AuthResult)
	return result, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	trialEnd := time.Now().UTC().Add(14 * 24 * time.Hour)
	company := "Acme"

	okResult := &auth.AuthResult{
		Token: "jwt-token",
		User: &models.User{
			UID:                "uid-1",
			Email:              "test@example.com",
			Name:               "Test User",
			Company:            &company,
			SubscriptionStatus: models.StatusTrial,
			TrialEnd:           &trialEnd,
		},
	}

	tests := []struct {
		name           string
		requestBody    any
		mockResult     *auth.AuthResult
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name: "successful registration",
			requestBody: Request{
				Name:     "Test User",
				Email:    "test@example.com",
				Company:  "Acme",
				Password: "password123",
			},
			mockResult:     okResult,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name: "missing email",
			requestBody: Request{
				Name:     "Test User",
				Password: "password123",
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Email is a required field",
		},
		{
			name: "malformed email",
			requestBody: Request{
				Name:     "Test User",
				Email:    "not-an-email",
				Password: "password123",
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Email must be a valid email",
		},
		{
			name: "short password",
			requestBody: Request{
				Name:     "Test User",
				Email:    "test@example.com",
				Password: "short",
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Password is too short",
		},
		{
			name: "duplicate email",
			requestBody: Request{
				Name:     "Test User",
				Email:    "test@example.com",
				Password: "password123",
			},
			mockErr:        repository.ErrUserExists,
			wantStatusCode: http.StatusConflict,
			wantError:      "user already exists with this email",
		},
		{
			name: "internal error",
			requestBody: Request{
				Name:     "Test User",
				Email:    "test@example.com",
				Password: "password123",
			},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockResult != nil || tt.mockErr != nil {
				serviceMock.On("Register", mock.Anything, mock.Anything).
					Return(tt.mockResult, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
				return
			}

			assert.Equal(t, true, got["success"])
			assert.Equal(t, "jwt-token", got["token"])

			user, ok := got["user"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "uid-1", user["id"])
			assert.Equal(t, "test@example.com", user["email"])
			assert.Equal(t, "Acme", user["company"])
			assert.Equal(t, models.StatusTrial, user["subscription_status"])
			// Хэш пароля наружу не отдаётся
			_, hasHash := user["password_hash"]
			assert.False(t, hasHash)

			serviceMock.AssertExpectations(t)
		})
	}
}
