// Package reschedule реализует HTTP-обработчик возврата отмененной встречи.
package reschedule

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/dto"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Handler возвращает отмененные встречи в расписание.
type Handler struct {
	log     *slog.Logger
	service Service
	window  *eventtime.Window
}

// Service описывает бизнес-логику возврата встречи.
type Service interface {
	RescheduleEvent(ctx context.Context, id string) (*models.Event, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, window *eventtime.Window) *Handler {
	return &Handler{
		log:     log,
		service: service,
		window:  window,
	}
}

// ServeHTTP godoc
// @Summary Вернуть отмененную встречу
// @Tags Admin
// @Produce json
// @Param id path string true "ID встречи"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 404 {object} response.ErrorResponse "Встреча не найдена"
// @Failure 409 {object} response.ErrorResponse "Встреча не отменена или день в перерыве"
// @Router /admin/events/{id}/reschedule [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.events.reschedule"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing event id")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing event id"))
		return
	}

	ev, err := h.service.RescheduleEvent(r.Context(), id)
	if err != nil {
		log.Error("failed to reschedule event", slog.String("event_id", id), sl.Err(err))
		msg := "could not reschedule event"
		switch {
		case errors.Is(err, models.ErrNotFound):
			msg = "event not found"
		case errors.Is(err, models.ErrInvalidState):
			msg = "only canceled events can be rescheduled"
		case errors.Is(err, models.ErrConflict):
			msg = "the event date falls within a break"
		}
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("event rescheduled", slog.String("event_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"event": dto.NewEvent(h.window, ev),
	}))
}
