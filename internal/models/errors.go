package models

import "errors"

var (
	// ErrInvalidArgument некорректные входные данные
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict пересечение перерывов или повторное планирование
	ErrConflict = errors.New("conflict")
	// ErrInvalidState операция недопустима в текущем состоянии сущности
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound сущность не найдена
	ErrNotFound = errors.New("not found")

	// ErrOutOfWindow дверь открывается только по субботам с 9 до 12
	ErrOutOfWindow = errors.New("outside of event hours")
	// ErrNoActiveEvent сегодня нет активной встречи
	ErrNoActiveEvent = errors.New("no active event")
	// ErrMisconfiguredCredentials не заданы учетные данные замка
	ErrMisconfiguredCredentials = errors.New("door control is not configured")
	// ErrActuatorFailure замок не подтвердил команду
	ErrActuatorFailure = errors.New("actuator failure")
	// ErrDoorCooldown дверь уже открывается
	ErrDoorCooldown = errors.New("door press already in progress")

	// ErrExternalService ошибка вызова почтового сервиса
	ErrExternalService = errors.New("external service failure")
	// ErrContactNotFound контакта нет в аудитории
	ErrContactNotFound = errors.New("contact not found")
	// ErrContactExists контакт уже есть в аудитории
	ErrContactExists = errors.New("contact already exists")
)
