// Package scheduler еженедельно планирует встречи на ближайшие субботы.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/config"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	scheduleservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/schedule"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/storage"
)

// App представляет приложение планировщика.
type App struct {
	service    *scheduleservice.ScheduleService
	db         *storage.Storage
	cron       *cron.Cron
	spec       string
	weeksAhead int
	metrics    *http.Server
	logger     *slog.Logger
}

func waitForDB(db *storage.Storage) error {
	for range 10 {
		err := storage.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает приложение планировщика. Таблицы создает API, поэтому
// планировщик ждет, пока миграции будут применены.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	window, err := eventtime.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = waitForDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		service:    scheduleservice.NewScheduleService(db, window, logger),
		db:         db,
		cron:       cron.New(cron.WithLocation(window.Location())),
		spec:       cfg.CronSpec,
		weeksAhead: cfg.WeeksAhead,
		metrics: &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// Run планирует встречи сразу при старте и затем по расписанию cron.
// Если появилась новая встреча, записи пользователей сбрасываются.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.cron.AddFunc(a.spec, func() { a.scheduleUpcoming(ctx) }); err != nil {
		_ = a.db.Close()
		return fmt.Errorf("invalid cron spec %q: %w", a.spec, err)
	}

	a.scheduleUpcoming(ctx)
	a.cron.Start()
	a.logger.Info("scheduler started", slog.String("cron", a.spec), slog.Int("weeks_ahead", a.weeksAhead))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.metrics.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down scheduler")
		<-a.cron.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.metrics.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close storage", sl.Err(cerr))
	}
	return err
}

func (a *App) scheduleUpcoming(ctx context.Context) {
	created, err := a.service.ScheduleUpcoming(ctx, time.Now(), a.weeksAhead)
	if err != nil {
		a.logger.Error("failed to schedule upcoming events", sl.Err(err))
	}
	for _, ev := range created {
		a.logger.Info("event scheduled", slog.String("id", ev.ID), slog.Time("date", ev.EventDate))
	}
	if len(created) == 0 {
		return
	}

	// новая неделя: записи на прошлую встречу больше не действуют
	n, err := a.db.ResetRSVPs(ctx)
	if err != nil {
		a.logger.Error("failed to reset rsvps", sl.Err(err))
		return
	}
	a.logger.Info("rsvps reset", slog.Int64("users", n))
}
