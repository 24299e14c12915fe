package models

import "time"

// BannerConfig объявление на главной странице. Актуальной считается запись
// с самым поздним UpdatedAt.
type BannerConfig struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}
