package email

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// MockService реализует интерфейс email.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ChangeEmail(ctx context.Context, userID, newEmail string) (*models.User, error) {
	args := m.Called(ctx, userID, newEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestEmailHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "email изменен",
			body: `{"email":"new@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("ChangeEmail", mock.Anything, "u1", "new@example.com").
					Return(&models.User{ID: "u1", Email: "new@example.com"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email":"new@example.com"`,
		},
		{
			name: "адрес занят",
			body: `{"email":"taken@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("ChangeEmail", mock.Anything, "u1", "taken@example.com").
					Return(nil, fmt.Errorf("storage.UpdateUserEmail: %w", models.ErrConflict)).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"email is already in use"}`,
		},
		{
			name:           "некорректный email",
			body:           `{"email":"not-an-email"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Email must be a valid email"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/preferences/email", strings.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middlewarectx.UserID, "u1")
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req.WithContext(ctx))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
