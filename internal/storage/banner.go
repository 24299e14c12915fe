package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// GetLatestBanner возвращает последнюю сохраненную конфигурацию баннера.
func (s *Storage) GetLatestBanner(ctx context.Context) (*models.BannerConfig, error) {
	const op = "storage.GetLatestBanner"

	var b models.BannerConfig
	err := s.DB.QueryRowContext(ctx, `SELECT id, content, enabled, updated_at
			  FROM banner_configs
			  ORDER BY updated_at DESC
			  LIMIT 1`).Scan(&b.ID, &b.Content, &b.Enabled, &b.UpdatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &b, nil
}

// SaveBanner обновляет актуальную запись баннера или создает первую.
func (s *Storage) SaveBanner(ctx context.Context, content string, enabled bool) (*models.BannerConfig, error) {
	const op = "storage.SaveBanner"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM banner_configs
			  ORDER BY updated_at DESC
			  LIMIT 1
			  FOR UPDATE`).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var b models.BannerConfig
	err = tx.QueryRowContext(ctx, `INSERT INTO banner_configs (id, content, enabled, updated_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (id) DO UPDATE
			  SET content = EXCLUDED.content, enabled = EXCLUDED.enabled, updated_at = NOW()
			  RETURNING id, content, enabled, updated_at`,
		id, content, enabled).Scan(&b.ID, &b.Content, &b.Enabled, &b.UpdatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}
