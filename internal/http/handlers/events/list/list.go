// Package list реализует HTTP-обработчик списка ближайших встреч.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/dto"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

const defaultLimit = 4

// Handler отдает ближайшие встречи.
type Handler struct {
	log     *slog.Logger
	service Service
	window  *eventtime.Window
	now     func() time.Time
}

// Service описывает бизнес-логику списка встреч.
type Service interface {
	UpcomingEvents(ctx context.Context, now time.Time, limit int) ([]*models.Event, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, window *eventtime.Window) *Handler {
	return &Handler{
		log:     log,
		service: service,
		window:  window,
		now:     time.Now,
	}
}

// ServeHTTP godoc
// @Summary Ближайшие встречи
// @Tags Events
// @Produce json
// @Param limit query int false "Количество встреч (1-52)" default(4)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный limit"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Info("invalid limit", slog.String("limit", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be a number"))
			return
		}
		limit = n
	}

	events, err := h.service.UpcomingEvents(r.Context(), h.now(), limit)
	if err != nil {
		log.Error("failed to list events", sl.Err(err))
		msg := "could not list events"
		if errors.Is(err, models.ErrInvalidArgument) {
			msg = "limit must be between 1 and 52"
		}
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error(msg))
		return
	}

	views := make([]dto.Event, 0, len(events))
	for _, ev := range events {
		views = append(views, dto.NewEvent(h.window, ev))
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"events": views,
	}))
}
