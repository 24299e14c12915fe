package models

import "time"

// Role роль пользователя.
type Role string

const (
	// RoleUser обычный участник
	RoleUser Role = "user"
	// RoleAdmin администратор
	RoleAdmin Role = "admin"
)

// User представляет участника встреч.
type User struct {
	ID         string    // Уникальный идентификатор пользователя
	Email      string    // Электронная почта, уникальна
	Name       *string   // Отображаемое имя
	Role       Role      // Роль пользователя, admin или user
	RSVPed     bool      // Записан на ближайшую встречу
	Subscribed bool      // Получает приглашения на будущие встречи
	Banned     bool      // Заблокирован
	BanReason  *string   // Причина блокировки
	CreatedAt  time.Time // Дата регистрации
}

// DisplayName возвращает имя пользователя или email, если имя не задано.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// UserField поле пользователя, которое администратор может переключить.
type UserField string

const (
	// FieldRSVPed запись на ближайшую встречу
	FieldRSVPed UserField = "rsvped"
	// FieldSubscribed подписка на рассылку
	FieldSubscribed UserField = "subscribed"
)
