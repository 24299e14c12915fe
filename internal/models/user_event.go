package models

import (
	"encoding/json"
	"fmt"
)

// UserEventType тег варианта сообщения очереди.
type UserEventType string

const (
	// UserCreateType новый пользователь
	UserCreateType UserEventType = "user_create"
	// UserUpdateType изменение email или подписки
	UserUpdateType UserEventType = "user_update"
)

// UserEvent сообщение очереди синхронизации контактов.
// Реализуется только типами UserCreateEvent и UserUpdateEvent.
type UserEvent interface {
	EventType() UserEventType
	ContactEmails() []string
	isUserEvent()
}

// UserCreateEvent добавляет пользователя в аудиторию рассылки.
type UserCreateEvent struct {
	Email            string  `json:"email"`
	Name             *string `json:"name,omitempty"`
	SendWelcomeEmail bool    `json:"sendWelcomeEmail,omitempty"`
}

// UserUpdateEvent меняет email контакта или статус подписки.
type UserUpdateEvent struct {
	Email      string  `json:"email"`
	Name       *string `json:"name,omitempty"`
	NewEmail   *string `json:"newEmail,omitempty"`
	Subscribed *bool   `json:"subscribed,omitempty"`
}

// EventType реализует UserEvent.
func (UserCreateEvent) EventType() UserEventType { return UserCreateType }

// EventType реализует UserEvent.
func (UserUpdateEvent) EventType() UserEventType { return UserUpdateType }

// ContactEmails реализует UserEvent.
func (e UserCreateEvent) ContactEmails() []string { return []string{e.Email} }

// ContactEmails возвращает старый и, при смене адреса, новый email.
func (e UserUpdateEvent) ContactEmails() []string {
	if e.NewEmail != nil && *e.NewEmail != "" {
		return []string{e.Email, *e.NewEmail}
	}
	return []string{e.Email}
}

func (UserCreateEvent) isUserEvent() {}
func (UserUpdateEvent) isUserEvent() {}

// IsEmailChange сообщает, меняется ли адрес контакта.
func (e UserUpdateEvent) IsEmailChange() bool {
	return e.NewEmail != nil && *e.NewEmail != ""
}

type envelope struct {
	Type UserEventType `json:"type"`
}

// MarshalUserEvent кодирует событие вместе с полем type.
func MarshalUserEvent(ev UserEvent) ([]byte, error) {
	const op = "models.MarshalUserEvent"
	var (
		body []byte
		err  error
	)
	switch e := ev.(type) {
	case UserCreateEvent:
		body, err = json.Marshal(struct {
			Type UserEventType `json:"type"`
			UserCreateEvent
		}{UserCreateType, e})
	case UserUpdateEvent:
		body, err = json.Marshal(struct {
			Type UserEventType `json:"type"`
			UserUpdateEvent
		}{UserUpdateType, e})
	default:
		return nil, fmt.Errorf("%s: unsupported event %T", op, ev)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

// UnmarshalUserEvent разбирает сообщение по полю type.
func UnmarshalUserEvent(body []byte) (UserEvent, error) {
	const op = "models.UnmarshalUserEvent"
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch env.Type {
	case UserCreateType:
		var e UserCreateEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if e.Email == "" {
			return nil, fmt.Errorf("%s: %w: email is empty", op, ErrInvalidArgument)
		}
		return e, nil
	case UserUpdateType:
		var e UserUpdateEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if e.Email == "" {
			return nil, fmt.Errorf("%s: %w: email is empty", op, ErrInvalidArgument)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%s: %w: unknown type %q", op, ErrInvalidArgument, env.Type)
	}
}
