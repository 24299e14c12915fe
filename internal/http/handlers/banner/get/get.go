// Package get реализует HTTP-обработчик чтения объявления на главной странице.
package get

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

// Handler отдает актуальное объявление.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику чтения объявления.
type Service interface {
	GetBanner(ctx context.Context) (*models.BannerConfig, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Объявление
// @Description Возвращает последнее объявление. Если объявления нет, data.banner равен null.
// @Tags Banner
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /banner [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.banner.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	b, err := h.service.GetBanner(r.Context())
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Error("failed to get banner", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get banner"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"banner": b,
	}))
}
