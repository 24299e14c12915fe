package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/jwt"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
	scheduleservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/schedule"
)

type stubPinger struct{}

func (stubPinger) PingContext(context.Context) error { return nil }

type stubAccounts map[string]*models.User

func (s stubAccounts) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRouter(t *testing.T) (http.Handler, *jwt.MakerImpl) {
	t.Helper()
	log := newNoopLogger()
	window := eventtime.MustNew(eventtime.DefaultTimezone)
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, log, window, Services{
		Schedule: scheduleservice.NewScheduleService(nil, window, log),
		Sessions: maker,
		Accounts: stubAccounts{
			"u1": {ID: "u1", Email: "user@example.com", Role: models.RoleUser},
			"a1": {ID: "a1", Email: "admin@example.com", Role: models.RoleAdmin},
			"d1": {ID: "d1", Email: "former@example.com", Role: models.RoleUser},
			"b1": {ID: "b1", Email: "banned@example.com", Role: models.RoleAdmin, Banned: true},
		},
		Health: stubPinger{},
	})
	return r, maker
}

func TestRoutes(t *testing.T) {
	router, maker := newRouter(t)

	userToken, err := maker.GenerateToken("u1", "user@example.com", models.RoleUser)
	require.NoError(t, err)
	adminToken, err := maker.GenerateToken("a1", "admin@example.com", models.RoleAdmin)
	require.NoError(t, err)
	demotedToken, err := maker.GenerateToken("d1", "former@example.com", models.RoleAdmin)
	require.NoError(t, err)
	bannedToken, err := maker.GenerateToken("b1", "banned@example.com", models.RoleAdmin)
	require.NoError(t, err)
	ghostToken, err := maker.GenerateToken("gone", "gone@example.com", models.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "health без сессии",
			method:         http.MethodGet,
			path:           "/api/v1/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "дверь без сессии",
			method:         http.MethodPost,
			path:           "/api/v1/door/open",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "поддельный токен",
			method:         http.MethodPost,
			path:           "/api/v1/preferences/rsvp",
			token:          "not-a-token",
			body:           `{"rsvp":true}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid or expired session"`,
		},
		{
			name:           "админка для обычного пользователя",
			method:         http.MethodPost,
			path:           "/api/v1/admin/events",
			token:          userToken,
			body:           `{"date":"2024-06-01"}`,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"forbidden"`,
		},
		{
			name:           "админка доходит до обработчика",
			method:         http.MethodPost,
			path:           "/api/v1/admin/events",
			token:          adminToken,
			body:           `not a json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "встреча с датой не в формате YYYY-MM-DD",
			method:         http.MethodPost,
			path:           "/api/v1/admin/events",
			token:          adminToken,
			body:           `{"date":"06-01-2024"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"field Date can contain only date in format YYYY-MM-DD"`,
		},
		{
			name:           "перерыв с датой не в формате YYYY-MM-DD",
			method:         http.MethodPost,
			path:           "/api/v1/admin/breaks",
			token:          adminToken,
			body:           `{"start_date":"07/01/2024","end_date":"2024-07-31"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"field StartDate can contain only date in format YYYY-MM-DD"`,
		},
		{
			name:           "перерыв без даты окончания",
			method:         http.MethodPost,
			path:           "/api/v1/admin/breaks",
			token:          adminToken,
			body:           `{"start_date":"2024-07-01"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"field EndDate is a required field"`,
		},
		{
			name:           "разжалованный администратор со старым токеном",
			method:         http.MethodPost,
			path:           "/api/v1/admin/events",
			token:          demotedToken,
			body:           `{"date":"2024-06-01"}`,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"forbidden"`,
		},
		{
			name:           "заблокированный пользователь",
			method:         http.MethodPost,
			path:           "/api/v1/preferences/rsvp",
			token:          bannedToken,
			body:           `{"rsvp":true}`,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"account is banned"`,
		},
		{
			name:           "пользователь удален",
			method:         http.MethodPost,
			path:           "/api/v1/admin/events",
			token:          ghostToken,
			body:           `{"date":"2024-06-01"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid or expired session"`,
		},
		{
			name:           "метрики",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "неизвестный маршрут",
			method:         http.MethodGet,
			path:           "/api/v1/unknown",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}
