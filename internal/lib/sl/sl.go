// Package sl помощники для slog: атрибут ошибки и логгер под окружение.
package sl

import (
	"io"
	"log/slog"
)

// Err возвращает атрибут "error" с текстом ошибки.
//
//	log.Error("failed to open door", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// NewLogger создает логгер для окружения env. Локально пишет текст
// с уровнем Debug, в остальных окружениях JSON с уровнем Info.
func NewLogger(env string, w io.Writer) *slog.Logger {
	if env == "local" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
