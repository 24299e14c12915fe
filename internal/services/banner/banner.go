// Package services реализует объявление на главной странице с кэшем в Redis.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

const (
	cacheKey = "banner:latest"
	cacheTTL = 10 * time.Minute
)

// Repository хранилище объявлений.
type Repository interface {
	GetLatestBanner(ctx context.Context) (*models.BannerConfig, error)
	SaveBanner(ctx context.Context, content string, enabled bool) (*models.BannerConfig, error)
}

// Cache кэш чтения объявления.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// BannerService читает и сохраняет объявление.
type BannerService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewBannerService создает BannerService. cache может быть nil.
func NewBannerService(repo Repository, cache Cache, log *slog.Logger) *BannerService {
	return &BannerService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetBanner возвращает актуальное объявление. Если объявления нет, возвращает models.ErrNotFound.
// Ошибки Redis не мешают чтению из базы.
func (s *BannerService) GetBanner(ctx context.Context) (*models.BannerConfig, error) {
	const op = "services.GetBanner"

	if s.cache != nil {
		var cached models.BannerConfig
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Warn("banner cache read failed", sl.Err(err))
		} else if found {
			return &cached, nil
		}
	}

	b, err := s.repo.GetLatestBanner(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, b, cacheTTL); err != nil {
			s.log.Warn("banner cache write failed", sl.Err(err))
		}
	}
	return b, nil
}

// UpsertBanner обновляет последнее объявление или создает первое и сбрасывает кэш.
func (s *BannerService) UpsertBanner(ctx context.Context, content string, enabled bool) (*models.BannerConfig, error) {
	const op = "services.UpsertBanner"

	b, err := s.repo.SaveBanner(ctx, content, enabled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
			s.log.Error("failed to invalidate banner cache", sl.Err(err))
		}
	}
	s.log.Info("banner saved", slog.String("banner_id", b.ID), slog.Bool("enabled", b.Enabled))
	return b, nil
}
