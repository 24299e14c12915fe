package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/admin/breaks/create"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/admin/events/cancel"
	eventcreate "github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/admin/events/create"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/admin/events/reschedule"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/admin/users/field"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/admin/users/role"
	bannerget "github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/banner/get"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/banner/upsert"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/door/open"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/events/list"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/health"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/preferences/email"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/preferences/rsvp"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/preferences/subscription"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/handlers/users/register"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	bannerservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/banner"
	doorservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/door"
	preferenceservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/preferences"
	scheduleservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/schedule"
	userservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/users"
)

// Services набор сервисов, которые обслуживает API.
type Services struct {
	Schedule    *scheduleservice.ScheduleService
	Door        *doorservice.DoorService
	Preferences *preferenceservice.PreferenceService
	Banner      *bannerservice.BannerService
	Users       *userservice.UserService
	Sessions    middlewarectx.TokenParser
	Accounts    middlewarectx.UserGetter
	Health      health.Pinger
}

// Нажатие двери: не чаще раза в 2 секунды с запасом на 3 запроса.
const (
	doorRate  = rate.Limit(0.5)
	doorBurst = 3
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, window *eventtime.Window, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/users", register.New(logger, s.Preferences).ServeHTTP)
		r.Get("/banner", bannerget.New(logger, s.Banner).ServeHTTP)
		r.Get("/events", list.New(logger, s.Schedule, window).ServeHTTP)
		r.Get("/health", health.New(logger, s.Health).ServeHTTP)

		// Группа с проверкой сессии
		r.Group(func(r chi.Router) {
			r.Use(
				middlewarectx.SessionMiddleware(s.Sessions, logger),
				middlewarectx.CheckUserMiddleware(logger, s.Accounts),
			)

			r.With(middlewarectx.RateLimitMiddleware(logger, doorRate, doorBurst)).
				Post("/door/open", open.New(logger, s.Door).ServeHTTP)
			r.Post("/preferences/rsvp", rsvp.New(logger, s.Preferences).ServeHTTP)
			r.Post("/preferences/subscription", subscription.New(logger, s.Preferences).ServeHTTP)
			r.Post("/preferences/email", email.New(logger, s.Preferences).ServeHTTP)

			// Администрирование
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))
				r.Post("/events", eventcreate.New(logger, s.Schedule, window).ServeHTTP)
				r.Post("/events/{id}/cancel", cancel.New(logger, s.Schedule, window).ServeHTTP)
				r.Post("/events/{id}/reschedule", reschedule.New(logger, s.Schedule, window).ServeHTTP)
				r.Post("/breaks", create.New(logger, s.Schedule, window).ServeHTTP)
				r.Post("/banner", upsert.New(logger, s.Banner).ServeHTTP)
				r.Post("/users/{id}/role", role.New(logger, s.Users).ServeHTTP)
				r.Post("/users/{id}/field", field.New(logger, s.Preferences).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
