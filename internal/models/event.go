// Package models содержит доменные структуры встреч Side Project Saturday:
// встречи, перерывы, пользователей, баннер и сообщения очереди синхронизации контактов.
package models

import "time"

// EventStatus статус встречи.
type EventStatus string

const (
	// EventScheduled встреча запланирована
	EventScheduled EventStatus = "scheduled"
	// EventInProgress встреча идет
	EventInProgress EventStatus = "inprogress"
	// EventCanceled встреча отменена
	EventCanceled EventStatus = "canceled"
)

// IsActive сообщает, можно ли открыть дверь во время встречи с таким статусом.
func (s EventStatus) IsActive() bool {
	return s == EventScheduled || s == EventInProgress
}

// Event одна встреча, не более одной на календарный день.
type Event struct {
	ID        string      `json:"id"`
	EventDate time.Time   `json:"event_date"` // Полночь по времени встречи
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Break перерыв с включительными границами, в который встречи не проводятся.
type Break struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps проверяет пересечение двух замкнутых интервалов.
func (b Break) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}

// Covers сообщает, попадает ли дата в перерыв, включая границы.
func (b Break) Covers(date time.Time) bool {
	return b.Overlaps(date, date)
}
