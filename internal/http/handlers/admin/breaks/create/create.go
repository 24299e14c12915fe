// Package create реализует HTTP-обработчик создания перерыва.
//
// Перерыв задается включительными датами. Запланированные встречи внутри
// перерыва отменяются вместе с его созданием.
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
	StartDate string `json:"start_date" validate:"required,date" example:"2024-07-01"`
	EndDate   string `json:"end_date" validate:"required,date" example:"2024-07-31"`
	Reason    string `json:"reason,omitempty" validate:"max=500" example:"Summer break"`
}

// Handler создает перерывы.
type Handler struct {
	log      *slog.Logger
	service  Service
	window   *eventtime.Window
	validate *validator.Validate
}

// Service описывает бизнес-логику создания перерыва.
type Service interface {
	ScheduleBreak(ctx context.Context, start, end time.Time, reason string) (*models.Break, error)
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
// @Summary Создать перерыв
// @Description Создает перерыв и отменяет запланированные встречи внутри него.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body Request true "Границы перерыва"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или начало не раньше конца"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 409 {object} response.ErrorResponse "Пересечение с другим перерывом"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/breaks [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.breaks.create"
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

	start, err := h.window.ParseDate(req.StartDate)
	if err != nil {
		log.Error("failed to parse start date", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid start_date"))
		return
	}
	end, err := h.window.ParseDate(req.EndDate)
	if err != nil {
		log.Error("failed to parse end date", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid end_date"))
		return
	}

	b, err := h.service.ScheduleBreak(r.Context(), start, end, req.Reason)
	if err != nil {
		log.Error("failed to schedule break", sl.Err(err))
		msg := "could not schedule break"
		switch {
		case errors.Is(err, models.ErrInvalidArgument):
			msg = "start_date must be before end_date"
		case errors.Is(err, models.ErrConflict):
			msg = "break overlaps an existing break"
		}
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("break scheduled", slog.String("break_id", b.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"break": dto.NewBreak(h.window, b),
	}))
}
