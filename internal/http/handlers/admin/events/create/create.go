// Package create реализует HTTP-обработчик планирования встречи администратором.
//
// Handler принимает дату встречи в формате YYYY-MM-DD, создает встречу
// через сервис и возвращает ее. День с уже существующей встречей или
// попадающий в перерыв дает 409.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/dto"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/validation"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Request тело запроса.
type Request struct {
	Date string `json:"date" validate:"required,date" example:"2024-06-01"`
}

// Handler планирует встречи.
type Handler struct {
	log      *slog.Logger
	service  Service
	window   *eventtime.Window
	validate *validator.Validate
}

// Service описывает бизнес-логику планирования встречи.
type Service interface {
	ScheduleEvent(ctx context.Context, date time.Time) (*models.Event, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, window *eventtime.Window) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		window:   window,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Запланировать встречу
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body Request true "Дата встречи"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 409 {object} response.ErrorResponse "Встреча уже есть или день в перерыве"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/events [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.events.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	date, err := h.window.ParseDate(req.Date)
	if err != nil {
		log.Error("failed to parse date", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid date"))
		return
	}

	ev, err := h.service.ScheduleEvent(r.Context(), date)
	if err != nil {
		log.Error("failed to schedule event", slog.String("date", req.Date), sl.Err(err))
		msg := "could not schedule event"
		if errors.Is(err, models.ErrConflict) {
			msg = "an event already exists on this date or the date falls within a break"
		}
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("event scheduled", slog.String("event_id", ev.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"event": dto.NewEvent(h.window, ev),
	}))
}
