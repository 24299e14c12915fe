// Package api собирает HTTP API: хранилище, кэш, очередь синхронизации
// контактов, замок двери и сервисы, и запускает HTTP-сервер.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"go.uber.org/multierr"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/cache"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/config"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/jwt"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/migrations"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/rabbitmq"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/resend"
	bannerservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/banner"
	doorservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/door"
	preferenceservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/preferences"
	scheduleservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/schedule"
	userservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/users"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/storage"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/switchbot"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает зависимости и строит маршруты. Без Redis API работает:
// объявление читается из базы, а повторные нажатия двери не блокируются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	window, err := eventtime.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = multierr.Combine(conn.Close(), db.Close())
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	if err = rabbitmq.Setup(ch, topology(cfg)); err != nil {
		_ = multierr.Combine(ch.Close(), conn.Close(), db.Close())
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, cfg.Exchange, cfg.RoutingKey)

	app := &App{
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}

	var (
		bannerCache bannerservice.Cache
		pressGuard  doorservice.PressGuard
	)
	redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis is unavailable, running without cache", sl.Err(err))
	} else {
		app.cache = redisCache
		bannerCache = redisCache
		pressGuard = redisCache
	}

	var mailer preferenceservice.Mailer
	if cfg.IsLocal() {
		mailer = resend.NewLogClient(logger)
	} else {
		mailer = resend.NewClient(cfg.Resend)
	}

	lock := switchbot.NewClient(cfg.SwitchBot)
	if !lock.Configured() {
		logger.Warn("switchbot credentials are not set, door control is disabled")
	}

	services := Services{
		Schedule:    scheduleservice.NewScheduleService(db, window, logger),
		Door:        doorservice.NewDoorService(db, lock, pressGuard, window, cfg.PressCooldown, logger),
		Preferences: preferenceservice.NewPreferenceService(db, db, publisher, mailer, window, cfg.EventsFrom, logger),
		Banner:      bannerservice.NewBannerService(db, bannerCache, logger),
		Users:       userservice.NewUserService(db, logger),
		Sessions:    jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Accounts:    db,
		Health:      db.DB,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, window, services)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func topology(cfg *config.Config) rabbitmq.Topology {
	return rabbitmq.Topology{
		Exchange:   cfg.Exchange,
		Queue:      cfg.Queue,
		RoutingKey: cfg.RoutingKey,
		RetryDelay: cfg.RetryDelay,
	}
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	return multierr.Append(err, a.close())
}

func (a *App) close() error {
	err := multierr.Combine(a.ch.Close(), a.conn.Close(), a.db.Close())
	if a.cache != nil {
		err = multierr.Append(err, a.cache.Close())
	}
	return err
}
