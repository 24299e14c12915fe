// Package services реализует планирование встреч и перерывов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/metrics"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Repository хранилище встреч и перерывов.
type Repository interface {
	// FindEventByDate возвращает встречу с точно такой датой или models.ErrNotFound.
	FindEventByDate(ctx context.Context, date time.Time) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, date time.Time) (*models.Event, error)
	UpdateEventStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error)
	FindBreaksCovering(ctx context.Context, date time.Time) ([]*models.Break, error)
	FindBreaksOverlapping(ctx context.Context, start, end time.Time) ([]*models.Break, error)
	// CreateBreakCancelingEvents атомарно отменяет встречи внутри перерыва и создает перерыв.
	CreateBreakCancelingEvents(ctx context.Context, start, end time.Time, reason *string) (*models.Break, int64, error)
	ListEventsFrom(ctx context.Context, from time.Time, limit int) ([]*models.Event, error)
}

// maxUpcoming верхняя граница числа встреч в списке.
const maxUpcoming = 52

// ScheduleService управляет встречами и перерывами.
type ScheduleService struct {
	repo   Repository
	window *eventtime.Window
	log    *slog.Logger
}

// NewScheduleService создает ScheduleService.
func NewScheduleService(repo Repository, window *eventtime.Window, log *slog.Logger) *ScheduleService {
	return &ScheduleService{
		repo:   repo,
		window: window,
		log:    log,
	}
}

// ScheduleEvent создает встречу на календарный день date. Возвращает
// models.ErrConflict, если встреча на этот день уже есть или день попадает в перерыв.
func (s *ScheduleService) ScheduleEvent(ctx context.Context, date time.Time) (*models.Event, error) {
	const op = "services.ScheduleEvent"
	day := s.window.StartOfDay(date)

	existing, err := s.repo.FindEventByDate(ctx, day)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w: event %s already exists for %s", op, models.ErrConflict, existing.ID, s.window.FormatDate(day))
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ensureNotOnBreak(ctx, day); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ev, err := s.repo.CreateEvent(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("event scheduled", slog.String("event_id", ev.ID), slog.String("date", s.window.FormatDate(day)))
	return ev, nil
}

// CancelEvent отменяет встречу. Повторная отмена не является ошибкой.
func (s *ScheduleService) CancelEvent(ctx context.Context, id string) (*models.Event, error) {
	const op = "services.CancelEvent"

	ev, err := s.repo.UpdateEventStatus(ctx, id, models.EventCanceled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("event canceled", slog.String("event_id", id))
	return ev, nil
}

// RescheduleEvent возвращает отмененную встречу в расписание.
func (s *ScheduleService) RescheduleEvent(ctx context.Context, id string) (*models.Event, error) {
	const op = "services.RescheduleEvent"

	ev, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ev.Status != models.EventCanceled {
		return nil, fmt.Errorf("%s: %w: event is %s, only canceled events can be rescheduled", op, models.ErrInvalidState, ev.Status)
	}
	if err := s.ensureNotOnBreak(ctx, ev.EventDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ev, err = s.repo.UpdateEventStatus(ctx, id, models.EventScheduled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("event rescheduled", slog.String("event_id", id))
	return ev, nil
}

// UpcomingEvents возвращает до limit встреч начиная с дня now, включая отмененные.
func (s *ScheduleService) UpcomingEvents(ctx context.Context, now time.Time, limit int) ([]*models.Event, error) {
	const op = "services.UpcomingEvents"
	if limit <= 0 || limit > maxUpcoming {
		return nil, fmt.Errorf("%s: %w: limit must be between 1 and %d", op, models.ErrInvalidArgument, maxUpcoming)
	}

	events, err := s.repo.ListEventsFrom(ctx, s.window.StartOfDay(now), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

// ScheduleBreak создает перерыв [start, end] и отменяет запланированные в нем встречи.
func (s *ScheduleService) ScheduleBreak(ctx context.Context, start, end time.Time, reason string) (*models.Break, error) {
	const op = "services.ScheduleBreak"
	startDay, endDay := s.window.StartOfDay(start), s.window.StartOfDay(end)

	if !startDay.Before(endDay) {
		return nil, fmt.Errorf("%s: %w: start date must be before end date", op, models.ErrInvalidArgument)
	}

	overlapping, err := s.repo.FindBreaksOverlapping(ctx, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("%s: %w: overlaps break %s", op, models.ErrConflict, overlapping[0].ID)
	}

	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}

	b, canceled, err := s.repo.CreateBreakCancelingEvents(ctx, startDay, endDay, reasonPtr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("break scheduled",
		slog.String("break_id", b.ID),
		slog.String("start", s.window.FormatDate(startDay)),
		slog.String("end", s.window.FormatDate(endDay)),
		slog.Int64("canceled_events", canceled),
	)
	return b, nil
}

// ScheduleUpcoming планирует встречи на weeks ближайших суббот начиная с now.
// Уже запланированные дни и дни в перерывах пропускаются.
func (s *ScheduleService) ScheduleUpcoming(ctx context.Context, now time.Time, weeks int) ([]*models.Event, error) {
	const op = "services.ScheduleUpcoming"

	dates, err := s.window.UpcomingSaturdays(s.window.SchedulingStart(now), weeks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		created []*models.Event
		errs    error
	)
	for _, date := range dates {
		ev, err := s.ScheduleEvent(ctx, date)
		switch {
		case err == nil:
			metrics.ScheduledEvents.WithLabelValues("created").Inc()
			created = append(created, ev)
		case errors.Is(err, models.ErrConflict):
			metrics.ScheduledEvents.WithLabelValues("skipped").Inc()
			s.log.Info("saturday skipped", slog.String("date", s.window.FormatDate(date)), slog.String("reason", err.Error()))
		default:
			metrics.ScheduledEvents.WithLabelValues("failed").Inc()
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return created, fmt.Errorf("%s: %w", op, errs)
	}
	return created, nil
}

func (s *ScheduleService) ensureNotOnBreak(ctx context.Context, day time.Time) error {
	breaks, err := s.repo.FindBreaksCovering(ctx, day)
	if err != nil {
		return err
	}
	if len(breaks) > 0 {
		return fmt.Errorf("%w: %s falls inside break %s", models.ErrConflict, s.window.FormatDate(day), breaks[0].ID)
	}
	return nil
}
