package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

const eventColumns = `id, event_date, status, created_at, updated_at`

func scanEvent(row scanner) (*models.Event, error) {
	var e models.Event
	var status string
	if err := row.Scan(&e.ID, &e.EventDate, &status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Status = models.EventStatus(status)
	return &e, nil
}

// CreateEvent создает запланированную встречу на дату date.
func (s *Storage) CreateEvent(ctx context.Context, date time.Time) (*models.Event, error) {
	const op = "storage.CreateEvent"

	query := `INSERT INTO events (id, event_date, status)
			  VALUES ($1, $2, $3)
			  RETURNING ` + eventColumns
	e, err := scanEvent(s.DB.QueryRowContext(ctx, query, uuid.NewString(), date, models.EventScheduled))
	if err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// GetEvent возвращает встречу по ID.
func (s *Storage) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	const op = "storage.GetEvent"

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// FindEventByDate возвращает встречу с точно совпадающей датой.
func (s *Storage) FindEventByDate(ctx context.Context, date time.Time) (*models.Event, error) {
	const op = "storage.FindEventByDate"

	query := `SELECT ` + eventColumns + ` FROM events WHERE event_date = $1`
	e, err := scanEvent(s.DB.QueryRowContext(ctx, query, date))
	if err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// UpdateEventStatus меняет статус встречи и возвращает обновлённую запись.
func (s *Storage) UpdateEventStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	const op = "storage.UpdateEventStatus"

	query := `UPDATE events
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2
			  RETURNING ` + eventColumns
	e, err := scanEvent(s.DB.QueryRowContext(ctx, query, status, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// FindActiveEventBetween ищет запланированную или идущую встречу в интервале [start, end).
func (s *Storage) FindActiveEventBetween(ctx context.Context, start, end time.Time) (*models.Event, error) {
	const op = "storage.FindActiveEventBetween"

	query := `SELECT ` + eventColumns + `
			  FROM events
			  WHERE event_date >= $1 AND event_date < $2
			    AND status IN ($3, $4)
			  ORDER BY event_date
			  LIMIT 1`
	e, err := scanEvent(s.DB.QueryRowContext(ctx, query, start, end, models.EventScheduled, models.EventInProgress))
	if err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// FindNextScheduledEvent возвращает ближайшую запланированную встречу не раньше from.
func (s *Storage) FindNextScheduledEvent(ctx context.Context, from time.Time) (*models.Event, error) {
	const op = "storage.FindNextScheduledEvent"

	query := `SELECT ` + eventColumns + `
			  FROM events
			  WHERE event_date >= $1 AND status = $2
			  ORDER BY event_date
			  LIMIT 1`
	e, err := scanEvent(s.DB.QueryRowContext(ctx, query, from, models.EventScheduled))
	if err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// ListEventsFrom возвращает встречи начиная с даты from.
func (s *Storage) ListEventsFrom(ctx context.Context, from time.Time, limit int) ([]*models.Event, error) {
	const op = "storage.ListEventsFrom"

	query := `SELECT ` + eventColumns + `
			  FROM events
			  WHERE event_date >= $1
			  ORDER BY event_date
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
