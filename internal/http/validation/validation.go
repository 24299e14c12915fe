// Package validation собирает валидатор запросов с правилами проекта.
package validation

import (
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
)

// New возвращает validator.Validate с правилом date (YYYY-MM-DD).
func New() *validator.Validate {
	v := validator.New()
	// ошибка возможна только при пустом имени правила
	_ = v.RegisterValidation("date", isDate)
	return v
}

func isDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(eventtime.DateLayout, fl.Field().String())
	return err == nil
}
