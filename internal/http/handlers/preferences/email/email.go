// Package email реализует HTTP-обработчик смены адреса электронной почты.
package email

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/dto"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Request тело запроса.
type Request struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Handler меняет email текущего пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику смены email.
type Service interface {
	ChangeEmail(ctx context.Context, userID, newEmail string) (*models.User, error)
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
// @Summary Сменить email
// @Description Меняет адрес пользователя и переносит контакт рассылки на новый адрес.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body Request true "Новый email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 409 {object} response.ErrorResponse "Адрес занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /preferences/email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.preferences.email"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	u, err := h.service.ChangeEmail(r.Context(), userID, req.Email)
	if err != nil {
		log.Error("failed to change email", slog.String("user_id", userID), sl.Err(err))
		msg := "could not change email"
		switch {
		case errors.Is(err, models.ErrConflict):
			msg = "email is already in use"
		case errors.Is(err, models.ErrNotFound):
			msg = "user not found"
		}
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("email changed", slog.String("user_id", userID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": dto.NewUser(u),
	}))
}
