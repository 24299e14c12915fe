package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// UserGetter загружает пользователя по идентификатору.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// CheckUserMiddleware сверяет сессию с текущей записью пользователя в базе.
// Заблокированные получают 403, удаленные 401. Роль и email в контексте
// заменяются значениями из базы, поэтому AdminOnly видит актуальную роль.
func CheckUserMiddleware(log *slog.Logger, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.CheckUserMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userID, ok := r.Context().Value(UserID).(string)
			if !ok || userID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if errors.Is(err, models.ErrNotFound) {
				log.Info("session user no longer exists", slog.String("user_id", userID))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session"))
				return
			}
			if err != nil {
				log.Error("failed to load session user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if user.Banned {
				log.Warn("banned user denied", slog.String("user_id", userID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("account is banned"))
				return
			}

			ctx := context.WithValue(r.Context(), Email, user.Email)
			ctx = context.WithValue(ctx, Role, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
