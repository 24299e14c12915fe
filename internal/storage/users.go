package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

const userColumns = `id, email, name, role, rsvped, subscribed, banned, ban_reason, created_at`

func scanUser(row scanner) (*models.User, error) {
	var (
		u         models.User
		name      sql.NullString
		banReason sql.NullString
		role      string
	)
	err := row.Scan(&u.ID, &u.Email, &name, &role, &u.RSVPed, &u.Subscribed, &u.Banned, &banReason, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Name = stringPtr(name)
	u.BanReason = stringPtr(banReason)
	u.Role = models.Role(role)
	return &u, nil
}

// CreateUser сохраняет нового пользователя. Email должен быть уникален.
func (s *Storage) CreateUser(ctx context.Context, email string, name *string, subscribed bool) (*models.User, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (id, email, name, role, subscribed)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, uuid.NewString(), email, nullString(name), models.RoleUser, subscribed))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"

	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// UpdateUserField переключает булево поле пользователя.
func (s *Storage) UpdateUserField(ctx context.Context, id string, field models.UserField, value bool) (*models.User, error) {
	const op = "storage.UpdateUserField"

	var column string
	switch field {
	case models.FieldRSVPed:
		column = "rsvped"
	case models.FieldSubscribed:
		column = "subscribed"
	default:
		return nil, fmt.Errorf("%s: %w: unknown field %q", op, models.ErrInvalidArgument, field)
	}

	query := `UPDATE users SET ` + column + ` = $1 WHERE id = $2 RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, value, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// UpdateUserRole меняет роль пользователя.
func (s *Storage) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	const op = "storage.UpdateUserRole"

	query := `UPDATE users SET role = $1 WHERE id = $2 RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, role, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// UpdateUserEmail меняет email пользователя.
func (s *Storage) UpdateUserEmail(ctx context.Context, id, email string) (*models.User, error) {
	const op = "storage.UpdateUserEmail"

	query := `UPDATE users SET email = $1 WHERE id = $2 RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// ResetRSVPs снимает все записи на встречу. Вызывается после планирования новой недели.
func (s *Storage) ResetRSVPs(ctx context.Context) (int64, error) {
	const op = "storage.ResetRSVPs"

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET rsvped = false WHERE rsvped`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
