// Package services открывает дверь во время встречи.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/metrics"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

const pressLockKey = "door:press"

// EventFinder ищет активную встречу в интервале.
type EventFinder interface {
	FindActiveEventBetween(ctx context.Context, start, end time.Time) (*models.Event, error)
}

// Actuator замок двери.
type Actuator interface {
	// Configured сообщает, заданы ли учетные данные замка.
	Configured() bool
	Press(ctx context.Context) error
}

// PressGuard не дает нажать кнопку повторно, пока идет предыдущее нажатие.
type PressGuard interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// DoorService открывает дверь.
type DoorService struct {
	events   EventFinder
	actuator Actuator
	guard    PressGuard
	window   *eventtime.Window
	cooldown time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewDoorService создает DoorService. guard может быть nil.
func NewDoorService(events EventFinder, actuator Actuator, guard PressGuard, window *eventtime.Window, cooldown time.Duration, log *slog.Logger) *DoorService {
	return &DoorService{
		events:   events,
		actuator: actuator,
		guard:    guard,
		window:   window,
		cooldown: cooldown,
		now:      time.Now,
		log:      log,
	}
}

// OpenDoor проверяет по порядку окно встречи, наличие активной встречи
// сегодня и настройки замка, после чего один раз нажимает кнопку.
func (s *DoorService) OpenDoor(ctx context.Context) error {
	const op = "services.OpenDoor"
	now := s.now()

	if !s.window.IsWithinEventHours(now) {
		metrics.DoorPresses.WithLabelValues("out_of_window").Inc()
		return fmt.Errorf("%s: %w", op, models.ErrOutOfWindow)
	}

	start, end := s.window.DayRange(now)
	ev, err := s.events.FindActiveEventBetween(ctx, start, end)
	if errors.Is(err, models.ErrNotFound) {
		metrics.DoorPresses.WithLabelValues("no_event").Inc()
		return fmt.Errorf("%s: %w", op, models.ErrNoActiveEvent)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.actuator.Configured() {
		metrics.DoorPresses.WithLabelValues("misconfigured").Inc()
		return fmt.Errorf("%s: %w", op, models.ErrMisconfiguredCredentials)
	}

	if s.guard != nil && s.cooldown > 0 {
		ok, err := s.guard.TryLock(ctx, pressLockKey, s.cooldown)
		switch {
		case err != nil:
			// без Redis дверь продолжает работать, теряется только защита от двойного нажатия
			s.log.Warn("press guard unavailable", sl.Err(err))
		case !ok:
			metrics.DoorPresses.WithLabelValues("cooldown").Inc()
			return fmt.Errorf("%s: %w", op, models.ErrDoorCooldown)
		}
	}

	if err := s.actuator.Press(ctx); err != nil {
		metrics.DoorPresses.WithLabelValues("failure").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.DoorPresses.WithLabelValues("success").Inc()
	s.log.Info("door opened", slog.String("event_id", ev.ID))
	return nil
}
