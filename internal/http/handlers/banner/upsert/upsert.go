// Package upsert реализует HTTP-обработчик сохранения объявления администратором.
package upsert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/response"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Bool принимает JSON true/false или строки "true"/"false".
type Bool bool

// UnmarshalJSON реализует json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Bool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("enabled must be a boolean: %w", err)
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("enabled must be a boolean: %w", err)
	}
	*b = Bool(v)
	return nil
}

// Request тело запроса.
type Request struct {
	Content string `json:"content" validate:"max=2000"`
	Enabled *Bool  `json:"enabled" validate:"required" swaggertype:"boolean"`
}

// Handler сохраняет объявление.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику сохранения объявления.
type Service interface {
	UpsertBanner(ctx context.Context, content string, enabled bool) (*models.BannerConfig, error)
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
// @Summary Сохранить объявление
// @Description Обновляет последнее объявление или создает первое.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body Request true "Текст и видимость объявления"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/banner [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.banner.upsert"
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

	b, err := h.service.UpsertBanner(r.Context(), req.Content, bool(*req.Enabled))
	if err != nil {
		log.Error("failed to save banner", sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("could not save banner"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"banner": b,
	}))
}
