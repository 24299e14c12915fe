// Package dto описывает представления сущностей в JSON-ответах API.
// Даты встреч и перерывов передаются как YYYY-MM-DD в часовом поясе встреч.
package dto

import (
	"time"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Event встреча.
type Event struct {
	ID        string             `json:"id"`
	EventDate string             `json:"event_date" example:"2024-06-01"`
	Status    models.EventStatus `json:"status" example:"scheduled"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Break перерыв.
type Break struct {
	ID        string    `json:"id"`
	StartDate string    `json:"start_date" example:"2024-07-01"`
	EndDate   string    `json:"end_date" example:"2024-07-31"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User пользователь.
type User struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	Name       *string     `json:"name,omitempty"`
	Role       models.Role `json:"role" example:"user"`
	RSVPed     bool        `json:"rsvped"`
	Subscribed bool        `json:"subscribed"`
	Banned     bool        `json:"banned"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewEvent строит представление встречи.
func NewEvent(w *eventtime.Window, e *models.Event) Event {
	return Event{
		ID:        e.ID,
		EventDate: w.FormatDate(e.EventDate),
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// NewBreak строит представление перерыва.
func NewBreak(w *eventtime.Window, b *models.Break) Break {
	return Break{
		ID:        b.ID,
		StartDate: w.FormatDate(b.StartDate),
		EndDate:   w.FormatDate(b.EndDate),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

// NewUser строит представление пользователя.
func NewUser(u *models.User) User {
	return User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		RSVPed:     u.RSVPed,
		Subscribed: u.Subscribed,
		Banned:     u.Banned,
		CreatedAt:  u.CreatedAt,
	}
}
