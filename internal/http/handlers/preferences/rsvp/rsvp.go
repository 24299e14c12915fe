// Package rsvp реализует HTTP-обработчик записи на ближайшую встречу.
package rsvp

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
	RSVP *bool `json:"rsvp" validate:"required"`
}

// Handler записывает участника на встречу или снимает запись.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику записи на встречу.
type Service interface {
	SetRSVP(ctx context.Context, userID string, rsvp bool) (*models.User, error)
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
// @Summary Записаться на встречу
// @Description Записывает текущего пользователя на ближайшую встречу или снимает запись. При записи отправляется письмо с приглашением в календарь.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body Request true "Запись на встречу"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 409 {object} response.ErrorResponse "Пользователь заблокирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /preferences/rsvp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.preferences.rsvp"
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

	u, err := h.service.SetRSVP(r.Context(), userID, *req.RSVP)
	if err != nil {
		log.Error("failed to update rsvp", slog.String("user_id", userID), sl.Err(err))
		msg := "could not update rsvp"
		switch {
		case errors.Is(err, models.ErrInvalidState):
			msg = "banned users cannot rsvp"
		case errors.Is(err, models.ErrNotFound):
			msg = "user not found"
		}
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("rsvp updated", slog.String("user_id", userID), slog.Bool("rsvp", u.RSVPed))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": dto.NewUser(u),
	}))
}
