// Package open реализует HTTP-обработчик открытия двери во время встречи.
package open

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// SuccessMessage ответ при успешном открытии двери.
const SuccessMessage = "Door opened successfully! Come on up to the 5th floor."

// Handler открывает дверь по запросу участника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику открытия двери.
type Service interface {
	OpenDoor(ctx context.Context) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Открыть дверь
// @Description Нажимает кнопку замка. Работает только по субботам с 9 до 12 во время запланированной встречи.
// @Tags Door
// @Produce json
// @Success 200 {object} response.Response "Дверь открыта"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Вне окна встречи или нет встречи"
// @Failure 429 {object} response.ErrorResponse "Дверь уже открывается"
// @Failure 500 {object} response.ErrorResponse "Замок не настроен"
// @Failure 502 {object} response.ErrorResponse "Замок не ответил"
// @Router /door/open [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.door.open"
	userID, _ := r.Context().Value(middlewarectx.UserID).(string)
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
	)

	err := h.service.OpenDoor(r.Context())
	if err != nil {
		status := response.StatusCode(err)
		var msg string
		switch {
		case errors.Is(err, models.ErrOutOfWindow):
			msg = "The door can only be opened on Saturdays between 9 AM and 12 PM."
		case errors.Is(err, models.ErrNoActiveEvent):
			msg = "There is no event today."
		case errors.Is(err, models.ErrDoorCooldown):
			msg = "The door is already being opened."
		case errors.Is(err, models.ErrActuatorFailure):
			msg = "Failed to open the door. Please try again."
		default:
			msg = "Door control is unavailable."
		}
		if status >= http.StatusInternalServerError {
			log.Error("failed to open door", sl.Err(err))
		} else {
			log.Info("door open rejected", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("door opened")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": SuccessMessage,
	}))
}
