// Package field реализует HTTP-обработчик переключения полей пользователя администратором.
package field

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/dto"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Request тело запроса.
type Request struct {
	Field string `json:"field" validate:"required,oneof=rsvped subscribed" example:"subscribed"`
	Value *bool  `json:"value" validate:"required"`
}

// Handler переключает поля пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику переключения поля.
type Service interface {
	UpdateUserField(ctx context.Context, userID string, field models.UserField, value bool) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Переключить поле пользователя
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "ID пользователя"
// @Param request body Request true "Поле и значение"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/users/{id}/field [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users.field"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	userID := chi.URLParam(r, "id")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	u, err := h.service.UpdateUserField(r.Context(), userID, models.UserField(req.Field), *req.Value)
	if err != nil {
		log.Error("failed to update user field", slog.String("user_id", userID), slog.String("field", req.Field), sl.Err(err))
		msg := "could not update user"
		if errors.Is(err, models.ErrNotFound) {
			msg = "user not found"
		}
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": dto.NewUser(u),
	}))
}
