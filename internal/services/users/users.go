// Package services реализует администрирование пользователей.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Repository хранилище ролей пользователей.
type Repository interface {
	UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}

// UserService меняет роли пользователей.
type UserService struct {
	repo Repository
	log  *slog.Logger
}

// NewUserService создает UserService.
func NewUserService(repo Repository, log *slog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// UpdateRole назначает пользователю userID роль role от имени администратора actorID.
// Администратор не может снять роль admin с самого себя.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID string, role models.Role) (*models.User, error) {
	const op = "services.UpdateRole"

	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: %w: unknown role %q", op, models.ErrInvalidArgument, role)
	}
	if actorID == userID && role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: %w: cannot remove your own admin role", op, models.ErrInvalidArgument)
	}

	u, err := s.repo.UpdateUserRole(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user role updated",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)
	return u, nil
}
