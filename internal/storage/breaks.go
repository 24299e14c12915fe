package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

const breakColumns = `id, start_date, end_date, reason, created_at`

func scanBreak(row scanner) (*models.Break, error) {
	var b models.Break
	var reason sql.NullString
	if err := row.Scan(&b.ID, &b.StartDate, &b.EndDate, &reason, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Reason = stringPtr(reason)
	return &b, nil
}

func (s *Storage) queryBreaks(ctx context.Context, q querier, op string, start, end time.Time) ([]*models.Break, error) {
	query := `SELECT ` + breakColumns + `
			  FROM breaks
			  WHERE start_date <= $2 AND end_date >= $1
			  ORDER BY start_date`
	rows, err := q.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Break
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindBreaksCovering возвращает перерывы, в которые попадает дата.
func (s *Storage) FindBreaksCovering(ctx context.Context, date time.Time) ([]*models.Break, error) {
	return s.queryBreaks(ctx, s.DB, "storage.FindBreaksCovering", date, date)
}

// FindBreaksOverlapping возвращает перерывы, пересекающиеся с [start, end].
func (s *Storage) FindBreaksOverlapping(ctx context.Context, start, end time.Time) ([]*models.Break, error) {
	return s.queryBreaks(ctx, s.DB, "storage.FindBreaksOverlapping", start, end)
}

// CreateBreakCancelingEvents в одной транзакции отменяет запланированные
// встречи внутри перерыва и сохраняет сам перерыв. Таблица перерывов
// блокируется, поэтому два пересекающихся перерыва не могут быть созданы
// одновременно. Возвращает созданный перерыв и число отмененных встреч.
func (s *Storage) CreateBreakCancelingEvents(ctx context.Context, start, end time.Time, reason *string) (*models.Break, int64, error) {
	const op = "storage.CreateBreakCancelingEvents"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `LOCK TABLE breaks IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	overlapping, err := s.queryBreaks(ctx, tx, op, start, end)
	if err != nil {
		return nil, 0, err
	}
	if len(overlapping) > 0 {
		return nil, 0, fmt.Errorf("%s: %w: overlaps break %s", op, models.ErrConflict, overlapping[0].ID)
	}

	res, err := tx.ExecContext(ctx, `UPDATE events
			  SET status = $1, updated_at = NOW()
			  WHERE status = $2 AND event_date >= $3 AND event_date <= $4`,
		models.EventCanceled, models.EventScheduled, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	canceled, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO breaks (id, start_date, end_date, reason)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + breakColumns
	b, err := scanBreak(tx.QueryRowContext(ctx, query, uuid.NewString(), start, end, nullString(reason)))
	if err != nil {
		return nil, 0, wrap(op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return b, canceled, nil
}
