// Package contactsync запускает потребителя очереди user_events, который
// переносит изменения пользователей в аудиторию рассылки.
package contactsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/config"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/rabbitmq"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/resend"
	contactsyncservice "github.com/magabrotheeeer/sideprojectsaturday/internal/services/contactsync"
)

var errChannelClosed = errors.New("rabbitmq channel closed")

// App приложение синхронизации контактов.
type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	service  *contactsyncservice.ContactSyncService
	consumer rabbitmq.ConsumerConfig
	metrics  *http.Server
	logger   *slog.Logger
}

// New подключается к RabbitMQ и объявляет топологию очереди. Локально
// вместо Resend используется клиент, который только пишет в лог.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	err = rabbitmq.Setup(ch, rabbitmq.Topology{
		Exchange:   cfg.Exchange,
		Queue:      cfg.Queue,
		RoutingKey: cfg.RoutingKey,
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		_ = multierr.Combine(ch.Close(), conn.Close())
		return nil, err
	}

	var list contactsyncservice.MailingList
	if cfg.IsLocal() {
		list = resend.NewLogClient(logger)
	} else {
		list = resend.NewClient(cfg.Resend)
	}

	return &App{
		conn:    conn,
		ch:      ch,
		service: newService(cfg, list, logger),
		consumer: rabbitmq.ConsumerConfig{
			Queue:          cfg.Queue,
			Prefetch:       cfg.Prefetch,
			MaxConcurrency: cfg.MaxConcurrency,
			MaxDeliveries:  cfg.MaxDeliveries,
		},
		metrics: &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// newService собирает сервис синхронизации. Приветственные письма уходят
// с адреса noreply (cfg.From), а не с адреса приглашений.
func newService(cfg *config.Config, list contactsyncservice.MailingList, logger *slog.Logger) *contactsyncservice.ContactSyncService {
	return contactsyncservice.NewContactSyncService(list, cfg.From, cfg.SiteURL, logger)
}

// Run обрабатывает очередь и отдает метрики, пока не отменен ctx.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("consuming queue", slog.String("queue", a.consumer.Queue),
			slog.Int("prefetch", a.consumer.Prefetch), slog.Int("max_concurrency", a.consumer.MaxConcurrency))
		if err := rabbitmq.Consume(gctx, a.ch, a.consumer, a.logger, a.service.Handle); err != nil {
			return err
		}
		if gctx.Err() == nil {
			return errChannelClosed
		}
		return nil
	})
	g.Go(func() error {
		a.logger.Info("metrics server starting on", slog.String("address", a.metrics.Addr))
		err := a.metrics.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.metrics.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.logger.Info("contact sync shutting down")
	return multierr.Append(err, multierr.Combine(a.ch.Close(), a.conn.Close()))
}
