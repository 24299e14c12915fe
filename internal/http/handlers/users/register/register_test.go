package register

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, email string, name *string) (*models.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func strPtr(s string) *string { return &s }

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: `{"email":"ann@example.com","name":"Ann"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "ann@example.com", strPtr("Ann")).
					Return(&models.User{ID: "u1", Email: "ann@example.com", Name: strPtr("Ann"), Role: models.RoleUser, Subscribed: true}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"subscribed":true`,
		},
		{
			name: "регистрация без имени",
			body: `{"email":"ann@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "ann@example.com", (*string)(nil)).
					Return(&models.User{ID: "u1", Email: "ann@example.com", Subscribed: true}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":"u1"`,
		},
		{
			name: "email уже зарегистрирован",
			body: `{"email":"ann@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "ann@example.com", (*string)(nil)).Return(nil, models.ErrConflict).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"email is already registered"}`,
		},
		{
			name:           "email не указан",
			body:           `{"name":"Ann"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Email is a required field"}`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"email":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "ошибка сервиса",
			body: `{"email":"ann@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "ann@example.com", (*string)(nil)).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not register user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
